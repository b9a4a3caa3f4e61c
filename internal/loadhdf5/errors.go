package loadhdf5

import "errors"

var ErrNotCompiled = errors.New("hdf5 support not compiled in, rebuild with -tags hdf5")
