package model

import "time"

// NoticeLevel classifies a transient user notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeNeutral NoticeLevel = "neutral"
)

// Notice is a transient notification surfaced after a user action.
type Notice struct {
	ID        int64       `json:"id,omitempty"`
	ClientID  string      `json:"-"`
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

// ActionOutcome is the result of one row action attempt.
type ActionOutcome string

const (
	OutcomeApplied   ActionOutcome = "applied"
	OutcomeRejected  ActionOutcome = "rejected"
	OutcomeFailed    ActionOutcome = "failed"
	OutcomeUnchanged ActionOutcome = "unchanged"
	OutcomeInvalid   ActionOutcome = "invalid"
	OutcomeBusy      ActionOutcome = "busy"
	OutcomeCancelled ActionOutcome = "cancelled"
)

// ActionRecord is a journal entry for a row action.
type ActionRecord struct {
	ID         int64         `json:"id"`
	ClientID   string        `json:"client_id"`
	OwnerID    string        `json:"owner_id,omitempty"`
	Collection Collection    `json:"collection"`
	EntityID   string        `json:"entity_id"`
	Field      string        `json:"field"`
	OldValue   string        `json:"old_value"`
	NewValue   string        `json:"new_value"`
	Outcome    ActionOutcome `json:"outcome"`
	Message    string        `json:"message"`
	CreatedAt  time.Time     `json:"created_at"`
}
