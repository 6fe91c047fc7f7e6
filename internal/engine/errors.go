package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every rejection raised before an order
	// touches the book. The book is left untouched.
	ErrValidation = errors.New("order rejected")

	ErrPriceNotPositive = fmt.Errorf("%w: limit order needs price > 0", ErrValidation)
	ErrSizeNotPositive  = fmt.Errorf("%w: limit order needs size > 0", ErrValidation)
	ErrNoBound          = fmt.Errorf("%w: order needs size > 0 or funds > 0", ErrValidation)
	ErrPriceStep        = fmt.Errorf("%w: price not a multiple of price step", ErrValidation)
	ErrSizeStep         = fmt.Errorf("%w: size not a multiple of size step", ErrValidation)
	ErrNegative         = fmt.Errorf("%w: size and funds must not be negative", ErrValidation)
	ErrDuplicateOrder   = fmt.Errorf("%w: order id already resting", ErrValidation)
)

var (
	// ErrMalformed is wrapped by construction failures on bad input shape.
	ErrMalformed = errors.New("malformed input")

	ErrMalformedDecimal = fmt.Errorf("%w: not a decimal", ErrMalformed)
	ErrInvalidSide      = fmt.Errorf("%w: side must be bid or ask", ErrMalformed)
	ErrMissingOrderID   = fmt.Errorf("%w: order id is empty", ErrMalformed)
)

var ErrInvalidStep = errors.New("step must be a positive decimal")
