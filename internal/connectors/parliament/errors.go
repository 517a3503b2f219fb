package parliament

import (
	"errors"
	"fmt"
	"net"
)

// APIError represents a non-success response from a Parliament API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("parliament: API error %d (URL: %s)", e.StatusCode, e.URL)
}

// FetchError represents a network-level failure: timeout, connection reset,
// or a malformed body. These are never "not found" and propagate to the
// caller, which skips the window and holds the watermark back.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("parliament: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates the id has no record.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsTransient checks if the error is worth retrying: a server-side failure,
// throttling, or a network-level error.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		var netErr net.Error
		if errors.As(fetchErr.Err, &netErr) {
			return true
		}
		// Connection-level failures from the transport arrive as url.Error
		// values that don't implement net.Error timeouts; treat any wrapped
		// fetch failure that isn't a decode problem as retryable.
		return fetchErr.Err != nil && !errors.Is(fetchErr.Err, errMalformedBody)
	}
	return false
}

// errMalformedBody marks a response that arrived but did not decode.
var errMalformedBody = errors.New("malformed body")
