package fields

// ConfigurationError is returned when a data source cannot be set up from its field model.
type ConfigurationError struct {
	Err error
}

func (err ConfigurationError) Error() string {
	return err.Err.Error()
}

func (err ConfigurationError) Unwrap() error {
	return err.Err
}
