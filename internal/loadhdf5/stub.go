//go:build !hdf5

package loadhdf5

import "github.com/liebenlito/pairdist/pairwise"

// Load is only available when built with -tags hdf5 since the hdf5 bindings
// need cgo and the system library.
func Load(path, dataset string) (*pairwise.Matrix, error) {
	return nil, ErrNotCompiled
}
