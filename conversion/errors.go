package conversion

import "errors"

var ErrChecksum = errors.New("checksum mismatch")
var ErrUnknownFormat = errors.New("unknown matrix file format")
