package query

import "errors"

var (
	ErrUnknownField           = errors.New("unknown field")
	ErrUnsupportedOperator    = errors.New("unsupported operator")
	ErrMalformedFilter        = errors.New("malformed filter")
	ErrMissingValue           = errors.New("missing filter value")
	ErrUnsupportedAggregation = errors.New("unsupported aggregation")
)

// CompilationError is returned when a grid request cannot be translated into a search body.
type CompilationError struct {
	Err error
}

func (err CompilationError) Error() string {
	return err.Err.Error()
}

func (err CompilationError) Unwrap() error {
	return err.Err
}
