package conversion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/liebenlito/pairdist/pairwise"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// matrixEnvelope is the on disk form of a matrix. The data is kept as raw
// bytes rather than a msgpack float array which would add a type byte per
// element.
type matrixEnvelope struct {
	Rows     int    `msgpack:"rows"`
	Cols     int    `msgpack:"cols"`
	Data     []byte `msgpack:"data"`
	Checksum uint64 `msgpack:"checksum"`
}

func EncodeMatrix(m *pairwise.Matrix) ([]byte, error) {
	if m == nil {
		return nil, pairwise.ErrNilMatrix
	}
	data := Float64ToBytes(m.RawData())
	env := matrixEnvelope{
		Rows:     m.Rows(),
		Cols:     m.Cols(),
		Data:     data,
		Checksum: xxhash.Sum64(data),
	}
	b, err := msgpack.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("could not encode matrix: %w", err)
	}
	return b, nil
}

func DecodeMatrix(b []byte) (*pairwise.Matrix, error) {
	var env matrixEnvelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("could not decode matrix: %w", err)
	}
	if sum := xxhash.Sum64(env.Data); sum != env.Checksum {
		return nil, fmt.Errorf("%w: got %x, expected %x", ErrChecksum, sum, env.Checksum)
	}
	if len(env.Data)%8 != 0 {
		return nil, fmt.Errorf("%w: %d data bytes is not a multiple of 8", pairwise.ErrBadShape, len(env.Data))
	}
	return pairwise.NewMatrix(env.Rows, env.Cols, BytesToFloat64(env.Data))
}

// Checksum returns the xxhash of the encoded matrix data, the same value that
// is stored in the envelope.
func Checksum(m *pairwise.Matrix) uint64 {
	return xxhash.Sum64(Float64ToBytes(m.RawData()))
}

// ---------------------------

func WriteMatrixFile(path string, m *pairwise.Matrix) error {
	b, err := EncodeMatrix(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("could not write matrix file %s: %w", path, err)
	}
	return nil
}

// ReadYAMLMatrix parses a YAML sequence of equal length rows, e.g.
//
//	- [0, 0]
//	- [3, 4]
func ReadYAMLMatrix(b []byte) (*pairwise.Matrix, error) {
	var rows [][]float64
	if err := yaml.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("could not parse yaml matrix: %w", err)
	}
	return pairwise.FromRows(rows)
}

// ReadMatrixFile loads a matrix based on the file extension, .mpk for the
// msgpack envelope and .yaml or .yml for a list of rows.
func ReadMatrixFile(path string) (*pairwise.Matrix, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mpk" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read matrix file %s: %w", path, err)
	}
	var m *pairwise.Matrix
	if ext == ".mpk" {
		m, err = DecodeMatrix(b)
	} else {
		m, err = ReadYAMLMatrix(b)
	}
	if err != nil {
		return nil, fmt.Errorf("matrix file %s: %w", path, err)
	}
	return m, nil
}
