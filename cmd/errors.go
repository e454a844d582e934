package cmd

import "errors"

var errDelegateFailed = errors.New("markmap delegate failed")

// IsReportedError reports whether the diagnostic for err was already written.
func IsReportedError(err error) bool {
	return errors.Is(err, errDelegateFailed)
}
