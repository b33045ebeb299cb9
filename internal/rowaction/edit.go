package rowaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/me/busdesk/pkg/model"
)

// Edit describes a single-field edit of one record.
type Edit[T any] struct {
	Target
	Field    string
	Question Question
	// Current is the field's present value, rendered as the prompt shows it.
	Current string
	// Validate checks the trimmed answer; a non-nil FieldError blocks the call.
	Validate func(value string) *model.FieldError
	// Update sends the new value to the remote service.
	Update func(ctx context.Context, value string) (Reply, error)
	// Apply writes the confirmed value into a copy of the record.
	Apply func(rec T, value string) T
	// Success is the notice shown when the reply carries no message.
	Success string
}

// EditField runs the edit contract: prompt, skip if unchanged, validate,
// update remotely, then patch only the matching record in state.
func EditField[T any](ctx context.Context, r *Runner, state Patcher[T], p Prompter, e Edit[T]) (Outcome, error) {
	rec := model.ActionRecord{Field: e.Field, OldValue: e.Current}
	noun := e.Collection.Singular()

	q := e.Question
	if q.Current == "" {
		q.Current = e.Current
	}
	ans, err := p.Prompt(ctx, q)
	if err != nil {
		return Outcome{}, fmt.Errorf("prompt %s %s: %w", noun, e.Field, err)
	}
	if !ans.OK {
		return r.finish(ctx, e.Target, rec, Outcome{
			Result: model.OutcomeCancelled,
			Notice: notice(model.NoticeNeutral, "No changes were made."),
		}), ErrCancelled
	}

	value := strings.TrimSpace(ans.Value)
	rec.NewValue = value
	if value == e.Current {
		return r.finish(ctx, e.Target, rec, Outcome{
			Result: model.OutcomeUnchanged,
			Notice: notice(model.NoticeNeutral, "No changes were made."),
			Value:  e.Current,
		}), ErrUnchanged
	}
	if e.Validate != nil {
		if fe := e.Validate(value); fe != nil {
			if fe.Field == "" {
				fe.Field = e.Field
			}
			out := Outcome{
				Result: model.OutcomeInvalid,
				Notice: notice(model.NoticeNeutral, fe.Message),
				Fields: []model.FieldError{*fe},
				Value:  e.Current,
			}
			return r.finish(ctx, e.Target, rec, out), &InvalidError{Fields: out.Fields}
		}
	}

	if !r.acquire(e.Collection, e.ID) {
		return r.finish(ctx, e.Target, rec, busyOutcome(e.Target)), ErrInFlight
	}
	defer r.release(e.Collection, e.ID)

	reply, err := e.Update(ctx, value)
	if err != nil || !reply.Success {
		out, rerr := remoteFailure(reply, err, fmt.Sprintf("Failed to update %s %s.", noun, e.Field))
		out.Value = e.Current
		return r.finish(ctx, e.Target, rec, out), rerr
	}

	confirmed := value
	if reply.HasValue {
		confirmed = reply.Value
	}
	rec.NewValue = confirmed
	if !state.Patch(e.ID, func(t T) T { return e.Apply(t, confirmed) }) {
		r.logger.Warn("edited record missing from local state", "collection", e.Collection, "id", e.ID)
	}
	if e.Menu != nil {
		e.Menu.Close()
	}

	msg := reply.Message
	if msg == "" {
		msg = e.Success
	}
	if msg == "" {
		msg = fmt.Sprintf("Updated %s %s.", noun, e.Field)
	}
	return r.finish(ctx, e.Target, rec, Outcome{
		Result: model.OutcomeApplied,
		Notice: notice(model.NoticeSuccess, msg),
		Value:  confirmed,
	}), nil
}
