package cmem

import "errors"

// ErrNotBuilt reports that cgo support was not compiled into the binary.
var ErrNotBuilt = errors.New("cmem: cgo support not built")

// ErrOutOfMemory reports that malloc returned NULL.
var ErrOutOfMemory = errors.New("cmem: allocation failed")
