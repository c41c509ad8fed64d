package codec

import "errors"

// Sentinel kinds for codec errors.
var (
	ErrEncode = errors.New("encode nested value")
	ErrDecode = errors.New("decode nested value")
)
