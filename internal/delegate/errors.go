package delegate

import "fmt"

// LoadError means the delegate could not be obtained or started, so its main
// logic never ran.
type LoadError struct {
	Label string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Err.Error())
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ExecError means the delegate ran and reported a failure.
type ExecError struct {
	Label    string
	Message  string
	ExitCode int
	Err      error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Message)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
