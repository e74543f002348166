package ovapi

import "fmt"

// FetchError is returned when the request for a stop code did not produce a
// successful HTTP response. StatusCode is zero when no response arrived at all.
type FetchError struct {
	StopCode   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch stop %s: %v", e.StopCode, e.Err)
	}
	return fmt.Sprintf("fetch stop %s: API %d", e.StopCode, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DataError is returned when the response body cannot be used, most commonly
// because it lacks the entry for the requested stop code.
type DataError struct {
	StopCode string
	Reason   string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stop %s: %s: %v", e.StopCode, e.Reason, e.Err)
	}
	return fmt.Sprintf("stop %s: %s", e.StopCode, e.Reason)
}

func (e *DataError) Unwrap() error { return e.Err }
