//go:build hdf5

package loadhdf5

import (
	"fmt"

	"github.com/liebenlito/pairdist/pairwise"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/hdf5"
)

// Load reads a two dimensional dataset, e.g. "train" or "test" in the
// ann-benchmarks files, into a matrix. The values are converted to float64 by
// the hdf5 library regardless of the stored precision.
func Load(path, dataset string) (*pairwise.Matrix, error) {
	log.Debug().Str("path", path).Str("dataset", dataset).Msg("loadHDF5")
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("could not open hdf5 file %s: %w", path, err)
	}
	defer f.Close()
	// ---------------------------
	dset, err := f.OpenDataset(dataset)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset %s: %w", dataset, err)
	}
	defer dset.Close()
	// ---------------------------
	dspace := dset.Space()
	defer dspace.Close()
	dims, _, err := dspace.SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("could not read dataset dimensions: %w", err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("%w: dataset %s has %d dimensions, expected 2", pairwise.ErrBadShape, dataset, len(dims))
	}
	dataBuf := make([]float64, dspace.SimpleExtentNPoints())
	if len(dataBuf) > 0 {
		if err := dset.Read(&dataBuf); err != nil {
			return nil, fmt.Errorf("could not read dataset %s: %w", dataset, err)
		}
	}
	log.Debug().Uint("dims[0]", dims[0]).Uint("dims[1]", dims[1]).Msg("loadHDF5")
	return pairwise.NewMatrix(int(dims[0]), int(dims[1]), dataBuf)
}
