package stratum

import "errors"

var (
	ErrInvalidURI = errors.New("stratum: invalid pool uri")
)
