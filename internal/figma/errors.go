package figma

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Op names the kind of resource a request fetched.
type Op string

const (
	OpFile   Op = "file"
	OpNodes  Op = "nodes"
	OpImages Op = "images"
)

// APIError is returned for any non-200 Figma response.
type APIError struct {
	Op         Op
	StatusCode int
	// Message is Figma's own error text when the body carried one.
	Message string
}

// Error keeps the wording of the tool results agents already expect,
// e.g. "Failed to fetch Figma file: 404".
func (e *APIError) Error() string {
	if e.StatusCode == http.StatusOK && e.Message != "" {
		return fmt.Sprintf("Failed to fetch Figma %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("Failed to fetch Figma %s: %d", e.Op, e.StatusCode)
}

// Detail returns a longer description including Figma's message.
func (e *APIError) Detail() string {
	if e.Message == "" || e.StatusCode == http.StatusOK {
		return e.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Error(), e.Message)
}

// newAPIError builds an APIError, pulling the message out of Figma's
// {"status": 403, "err": "..."} error body when present.
func newAPIError(op Op, status int, body []byte) *APIError {
	apiErr := &APIError{Op: op, StatusCode: status}

	var payload struct {
		Err     string `json:"err"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Err
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
