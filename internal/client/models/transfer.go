package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Status is the backend-owned lifecycle status of a transfer session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"

	// Reported by the backend but never produced by a client action.
	StatusInProgress Status = "in_progress"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"

	StatusUnknown Status = "unknown"
)

// Normalize lower-cases the status; an empty status becomes StatusUnknown.
func (s Status) Normalize() Status {
	n := Status(strings.ToLower(strings.TrimSpace(string(s))))
	if n == "" {
		return StatusUnknown
	}
	return n
}

// TransferSession is a read-only mirror of a backend transfer record.
// Optional wire fields decode to "" when null or absent.
type TransferSession struct {
	ID             string    `json:"id"`
	SenderUserID   string    `json:"sender_user_id,omitempty"`
	ReceiverUserID string    `json:"receiver_user_id,omitempty"`
	ReceiverIP     string    `json:"receiver_ip,omitempty"`
	FileName       string    `json:"file_name"`
	FileSize       int64     `json:"file_size"`
	FileType       string    `json:"file_type,omitempty"`
	ChecksumSHA256 string    `json:"checksum_sha256"`
	Status         Status    `json:"status"`
	CreatedAt      Timestamp `json:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

// CreateSessionRequest is the body of POST /transfers/sessions. At least one
// of ReceiverIP / ReceiverUserID must be set.
type CreateSessionRequest struct {
	ReceiverIP     *string `json:"receiver_ip"`
	ReceiverUserID *string `json:"receiver_user_id"`
	FileName       string  `json:"file_name"`
	FileSize       int64   `json:"file_size"`
	FileType       *string `json:"file_type"`
	ChecksumSHA256 string  `json:"checksum_sha256"`
}

// CreateSessionResponse carries the id of the created session.
type CreateSessionResponse struct {
	ID string `json:"id"`
}

// OptionalString returns nil for an empty (after trimming) string.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp decodes the backend's ISO-8601 datetimes. Values without a zone
// are taken as UTC. Null or unparseable values become the zero time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = ParseTimestamp(raw)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ParseTimestamp parses raw with the layouts the backend is known to emit.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
