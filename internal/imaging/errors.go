package imaging

import "errors"

var (
	ErrDecode        = errors.New("image could not be decoded")
	ErrInvalidTarget = errors.New("target dimensions must be positive")
)
