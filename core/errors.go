package core

import (
	"errors"
	"fmt"
)

var (
	// ErrCommParamsNotSet is returned by every gain, pattern and power query on
	// a spacecraft whose communication parameters were never configured.
	ErrCommParamsNotSet = errors.New("communication parameters not configured")

	// ErrInvalidParameter marks rejected numeric input (frequency, gain,
	// grid resolution, bounds).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrShapeMismatch is returned when aggregating fields of different
	// shapes. It wraps ErrInvalidParameter.
	ErrShapeMismatch = fmt.Errorf("%w: field shape mismatch", ErrInvalidParameter)
)
