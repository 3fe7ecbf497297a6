package extract

import "fmt"

// FetchError reports a transport-level failure retrieving a dataset:
// connection errors, timeouts, or a non-2xx response. Fatal for that
// dataset run; other datasets continue.
type FetchError struct {
	Ref string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch dataset %s: %v", e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a payload that does not match the expected shape.
// Fatal for that dataset run.
type ParseError struct {
	Ref    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse dataset %s: %s: %v", e.Ref, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to parse dataset %s: %s", e.Ref, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
