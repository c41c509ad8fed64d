package record

import "errors"

// Sentinel kinds for row conversion errors.
var (
	ErrFlatten = errors.New("flatten document")
	ErrExpand  = errors.New("expand row")
)
