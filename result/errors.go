package result

import "errors"

var (
	ErrNoGroupFound            = errors.New("no group found")
	ErrMissingGroupAggregation = errors.New("missing group aggregation")
	ErrUnknownGroupField       = errors.New("unknown group field")
)

// MaterializationError is returned when a search response cannot be turned into grid results.
type MaterializationError struct {
	Err error
}

func (err MaterializationError) Error() string {
	return err.Err.Error()
}

func (err MaterializationError) Unwrap() error {
	return err.Err
}
