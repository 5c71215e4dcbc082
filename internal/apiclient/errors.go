package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// RequestError is a non-transient rejection from the ledger service
// (malformed request, 4xx status). Never retried.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("request rejected: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("request rejected: status %d", e.Status)
}

// serverError is a transient server-side failure (5xx).
type serverError struct {
	Status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: status %d", e.Status)
}

// retryable classifies an error as transient (worth another attempt)
// or final. Connection and timeout failures plus 5xx responses are
// transient; an explicit rejection or a cancelled context is final.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	// A cancelled or expired context must stop the retry loop.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return false
	}

	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	return false
}

// classifyStatus converts a non-2xx HTTP status into the taxonomy.
func classifyStatus(resp *http.Response, body string) error {
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return &serverError{Status: resp.StatusCode}
	default:
		return &RequestError{Status: resp.StatusCode, Body: body}
	}
}
