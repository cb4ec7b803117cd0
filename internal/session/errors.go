package session

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/plantquery/plantquery/internal/api"
)

// SessionCreationError reports a failed session creation. No local
// state exists when this error is returned.
type SessionCreationError struct {
	Filename string
	Reason   string
	Status   int   // HTTP status when the backend answered, zero otherwise
	Err      error // underlying transport error, if any
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("create session for %q: %s", e.Filename, e.Reason)
}

func (e *SessionCreationError) Unwrap() error { return e.Err }

// MessageProcessingError reports a failed chat exchange. The session
// mirror is untouched when this error is returned.
type MessageProcessingError struct {
	SessionID string
	Reason    string
	Status    int
	Err       error
}

func (e *MessageProcessingError) Error() string {
	return fmt.Sprintf("process message for session %s: %s", e.SessionID, e.Reason)
}

func (e *MessageProcessingError) Unwrap() error { return e.Err }

// ExportUnavailableError reports that a graph export could not be
// retrieved or saved.
type ExportUnavailableError struct {
	SessionID string
	Reason    string
	Status    int
	Err       error
}

func (e *ExportUnavailableError) Error() string {
	return fmt.Sprintf("export session %s: %s", e.SessionID, e.Reason)
}

func (e *ExportUnavailableError) Unwrap() error { return e.Err }

// failureReason extracts the backend's error detail from a response
// body, falling back to a generic description of the HTTP status when
// the body carries no parseable detail.
func failureReason(resp *resty.Response) string {
	var apiErr api.ErrorResponse
	if err := sonic.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fmt.Sprintf("backend returned HTTP %d", resp.StatusCode())
}
