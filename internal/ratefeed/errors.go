package ratefeed

import (
	"fmt"
	"strings"
)

// APIError is a vendor call failure. Transient failures are retried
// with backoff up to the attempt cap before being surfaced; Action
// carries remedial text safe to show a user.
type APIError struct {
	Status    int
	Message   string
	Transient bool
	Action    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rate feed: status %d: %s", e.Status, e.Message)
}

// classify builds the typed error for a non-200 response.
func classify(status int, body string) *APIError {
	e := &APIError{Status: status, Message: strings.TrimSpace(body)}

	switch {
	case status == 429:
		e.Transient = true
		e.Action = "hourly rate limit reached, wait for the window to reset"
	case status == 404:
		e.Transient = true
		e.Action = "store not found, it may appear after a vendor refresh"
	case status == 500 || status == 503:
		e.Transient = true
		e.Action = "vendor service unavailable, retry shortly"
	case status == 400 && sqlTimeout(body):
		e.Transient = true
		e.Action = "vendor database timed out, retry shortly"
	case status == 400:
		e.Action = "request rejected, check store id and date range"
	case status == 401 || status == 403:
		e.Action = "authentication failed, check vendor credentials"
	default:
		e.Action = "vendor request failed, contact support if it persists"
	}
	return e
}

// sqlTimeout recognizes the vendor's database timeout, which arrives
// as a 400 with diagnostic text rather than a 5xx.
func sqlTimeout(body string) bool {
	low := strings.ToLower(body)
	return strings.Contains(low, "sql server") ||
		strings.Contains(low, "network-related") ||
		strings.Contains(low, "timeout")
}
