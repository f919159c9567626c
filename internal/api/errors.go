package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrFetchFailed matches every FetchError via errors.Is. It is the only
// failure kind the client reports.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError describes a failed GET: a non-2xx status, a transport error or
// a body that could not be decoded. Error() is the message shown inline in
// place of the content that failed to load.
type FetchError struct {
	Op         string // what was being fetched, e.g. "chapters"
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	msg := "Failed to fetch " + e.Op
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d %s", msg, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	default:
		return msg
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports true for ErrFetchFailed.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
