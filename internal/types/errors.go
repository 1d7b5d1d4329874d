package types

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when a page yields no player records
var ErrNoData = errors.New("no player data found")

// FetchError is a network failure, timeout or non-2xx response
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError is malformed JSON or markup
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ResolutionError means no resolution probe succeeded.
// The resolver degrades to the original URL, so it is only ever logged.
type ResolutionError struct {
	URL      string
	Attempts int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no variant of %s answered after %d probes", e.URL, e.Attempts)
}

// ValidationError is an image rejected for being below the minimum size
type ValidationError struct {
	Path          string
	Width, Height int
	Min           int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("image %s is %dx%d, below minimum %dpx", e.Path, e.Width, e.Height, e.Min)
}
