package session

// LoadError is an actor load failure. Its message is the underlying error's
// message, unchanged, since it is shown to the user as is.
type LoadError struct {
	Demo string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return "load failed"
	}
	return e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }
