package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/ulak/internal/client/client"
	"github.com/dmitrijs2005/ulak/internal/client/routing"
	"github.com/dmitrijs2005/ulak/internal/common"
)

// userMessage turns a command failure into the line shown to the user.
func userMessage(err error) string {
	detail := ""
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		detail = ": " + apiErr.Detail
	}

	switch {
	case errors.Is(err, common.ErrValidation):
		if detail == "" {
			return "Invalid input: " + validationText(err)
		}
		return "Invalid input" + detail
	case errors.Is(err, common.ErrUnauthorized):
		return "Authentication failed, check your credentials or log in again" + detail
	case errors.Is(err, common.ErrForbidden):
		return "Not allowed" + detail
	case errors.Is(err, common.ErrNotFound):
		return "Not found" + detail
	case errors.Is(err, common.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.Is(err, common.ErrServer):
		return "Server error" + detail
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out"
	default:
		return "Error: " + err.Error()
	}
}

// validationText strips the sentinel prefix of locally raised validation
// errors ("validation error: receiver ip or user id is required").
func validationText(err error) string {
	msg := err.Error()
	prefix := common.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// guardMessage explains a routing decision that stops a command.
func guardMessage(d routing.Decision) string {
	switch d.Action {
	case routing.ActionWait:
		return "Still loading, try again in a moment."
	case routing.ActionRedirect:
		switch d.Path {
		case routing.PathLogin:
			return "You are not logged in. Run 'login' first."
		case routing.PathSettings:
			return "You must change your password first. Run 'passwd'."
		default:
			return "Not available here."
		}
	default:
		return ""
	}
}
