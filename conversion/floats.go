package conversion

import (
	"encoding/binary"
	"math"
)

/* Matrices are stored as little endian IEEE 754 float64 regardless of the
 * host architecture so that files and cache entries can be moved between
 * machines. math.Float64bits just reinterprets the bits, the byte order is
 * what we have to pin down. */

func Float64ToBytes(f []float64) []byte {
	b := make([]byte, len(f)*8)
	for i, v := range f {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

func BytesToFloat64(b []byte) []float64 {
	// We allocate a new slice because the original byte slice may be disposed.
	// Most likely this byte slices comes from a BoltDB transaction.
	f := make([]float64, len(b)/8)
	for i := range f {
		f[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return f
}

func Uint64ToBytes(i uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, i)
	return b
}

func BytesToUint64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}
