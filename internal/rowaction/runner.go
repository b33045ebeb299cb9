// Package rowaction implements the mutation contract shared by list rows:
// prompt for a value, skip unchanged or invalid input, call the remote
// service, and patch exactly one local record on confirmation.
package rowaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/busdesk/pkg/model"
)

var (
	// ErrInFlight is returned when another action on the same record is
	// still awaiting the remote service.
	ErrInFlight = errors.New("action already in progress")
	// ErrUnchanged is returned when the submitted value equals the current one.
	ErrUnchanged = errors.New("value unchanged")
	// ErrCancelled is returned when the user dismissed the prompt.
	ErrCancelled = errors.New("action cancelled")
	// ErrRejected is returned when the remote service answered success=false.
	ErrRejected = errors.New("rejected by remote service")
	// ErrNotLoaded is returned when the record is missing from local state.
	ErrNotLoaded = errors.New("record not in local state")
)

// InvalidError carries field-level validation failures. No remote call is
// made when it is returned.
type InvalidError struct {
	Fields []model.FieldError
}

func (e *InvalidError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	return e.Fields[0].Message
}

// Patcher is the local state a row action updates on success.
type Patcher[T any] interface {
	Patch(id string, fn func(T) T) bool
	Remove(id string) bool
}

// Notifier receives the transient notice produced by each action.
type Notifier interface {
	PushNotice(ctx context.Context, n model.Notice) error
}

// Journal records the outcome of each action.
type Journal interface {
	RecordAction(ctx context.Context, rec model.ActionRecord) error
}

// Reply is the remote service's answer to a mutation.
type Reply struct {
	Success bool
	Message string
	// Value is the server-confirmed value of the mutated field, if returned.
	Value    string
	HasValue bool
}

// Target identifies the record an action applies to.
type Target struct {
	ClientID   string
	OwnerID    string
	Collection model.Collection
	ID         string
	Menu       *Menu
}

// Outcome summarizes a finished action.
type Outcome struct {
	Result model.ActionOutcome
	Notice model.Notice
	Fields []model.FieldError
	// Value is the value now held locally for the edited field.
	Value string
}

type inflightKey struct {
	collection model.Collection
	id         string
}

// Runner executes row actions, allowing one in-flight action per record.
type Runner struct {
	mu       sync.Mutex
	inflight map[inflightKey]struct{}

	notifier Notifier
	journal  Journal
	logger   *slog.Logger
	now      func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithNotifier sets where notices are delivered.
func WithNotifier(n Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithJournal sets where outcomes are recorded.
func WithJournal(j Journal) RunnerOption {
	return func(r *Runner) { r.journal = j }
}

// NewRunner creates a Runner.
func NewRunner(logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		inflight: make(map[inflightKey]struct{}),
		logger:   logger.With("component", "rowaction"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Busy reports whether an action on the record is awaiting the remote service.
func (r *Runner) Busy(c model.Collection, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inflight[inflightKey{c, id}]
	return ok
}

func (r *Runner) acquire(c model.Collection, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := inflightKey{c, id}
	if _, ok := r.inflight[k]; ok {
		return false
	}
	r.inflight[k] = struct{}{}
	return true
}

func (r *Runner) release(c model.Collection, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, inflightKey{c, id})
}

// finish delivers the notice, writes the journal entry, and returns the outcome.
func (r *Runner) finish(ctx context.Context, t Target, rec model.ActionRecord, out Outcome) Outcome {
	out.Notice.ClientID = t.ClientID
	out.Notice.CreatedAt = r.now()
	if r.notifier != nil {
		if err := r.notifier.PushNotice(ctx, out.Notice); err != nil {
			r.logger.Warn("push notice", "client", t.ClientID, "error", err)
		}
	}

	rec.ClientID = t.ClientID
	rec.OwnerID = t.OwnerID
	rec.Collection = t.Collection
	rec.EntityID = t.ID
	rec.Outcome = out.Result
	rec.Message = out.Notice.Message
	rec.CreatedAt = out.Notice.CreatedAt
	if r.journal != nil {
		if err := r.journal.RecordAction(ctx, rec); err != nil {
			r.logger.Warn("record action", "collection", t.Collection, "id", t.ID, "error", err)
		}
	}

	r.logger.Debug("row action",
		"collection", t.Collection,
		"id", t.ID,
		"field", rec.Field,
		"outcome", out.Result,
	)
	return out
}

func notice(level model.NoticeLevel, msg string) model.Notice {
	return model.Notice{Level: level, Message: msg}
}

func busyOutcome(t Target) Outcome {
	return Outcome{
		Result: model.OutcomeBusy,
		Notice: notice(model.NoticeNeutral, fmt.Sprintf("An update to this %s is already in progress.", t.Collection.Singular())),
	}
}

// remoteFailure maps a transport error or business rejection to an outcome.
func remoteFailure(reply Reply, err error, fallback string) (Outcome, error) {
	if err != nil {
		return Outcome{Result: model.OutcomeFailed, Notice: notice(model.NoticeError, fallback)}, err
	}
	msg := reply.Message
	if msg == "" {
		msg = fallback
	}
	return Outcome{Result: model.OutcomeRejected, Notice: notice(model.NoticeError, msg)}, fmt.Errorf("%w: %s", ErrRejected, msg)
}
