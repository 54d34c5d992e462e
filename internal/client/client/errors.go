package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ulak/internal/common"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// APIError is a non-2xx backend response. It unwraps to the matching
// sentinel of the common error taxonomy, so callers can use errors.Is.
type APIError struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.kind, e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// kindForStatus maps an HTTP status code onto the error taxonomy.
func kindForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusLocked:
		return common.ErrUnauthorized
	case code == http.StatusForbidden:
		return common.ErrForbidden
	case code == http.StatusNotFound:
		return common.ErrNotFound
	case code == http.StatusBadRequest, code == http.StatusConflict, code == http.StatusUnprocessableEntity:
		return common.ErrValidation
	default:
		return common.ErrServer
	}
}

// newAPIError builds an APIError from a response, extracting the detail
// message the backend puts in {"detail": ...}.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return NewAPIError(resp.StatusCode, parseDetail(body))
}

// NewAPIError builds the error for an HTTP status and a detail message.
func NewAPIError(statusCode int, detail string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Detail:     detail,
		kind:       kindForStatus(statusCode),
	}
}

// parseDetail understands both the plain {"detail": "..."} form and the
// validation form {"detail": [{"msg": "..."}, ...]}. Anything else is
// returned as trimmed text.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return strings.TrimSpace(string(payload.Detail))
}
