package store

import (
	"context"
	"time"

	"github.com/me/busdesk/pkg/model"
)

// ActionFilter narrows ListActions. Empty fields match everything.
type ActionFilter struct {
	ClientID   string
	OwnerID    string
	Collection model.Collection
	EntityID   string
}

// Store defines the console-local persistence layer. Booking data itself
// lives in the remote API; only notices and the action journal are kept here.
type Store interface {
	// Notices (flash messages shown once on the next page render)
	PushNotice(ctx context.Context, n model.Notice) error
	PopNotices(ctx context.Context, clientID string) ([]model.Notice, error)
	PruneNotices(ctx context.Context, before time.Time) (int64, error)

	// Action journal
	RecordAction(ctx context.Context, rec model.ActionRecord) error
	ListActions(ctx context.Context, f ActionFilter, opts model.ListOptions) ([]model.ActionRecord, int, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
