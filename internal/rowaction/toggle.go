package rowaction

import (
	"context"
	"fmt"
	"strconv"

	"github.com/me/busdesk/pkg/model"
)

// Toggle describes a flip of one record's boolean flag.
type Toggle[T any] struct {
	Target
	Field   string
	Current bool
	// Flip asks the remote service to flip the flag and returns the new value.
	Flip func(ctx context.Context) (bool, error)
	// Apply writes the confirmed flag into a copy of the record.
	Apply func(rec T, flag bool) T
	// Message renders the success notice for the confirmed flag.
	Message func(flag bool) string
}

// ToggleFlag runs the toggle contract. The server's returned flag is
// trusted over the locally expected one.
func ToggleFlag[T any](ctx context.Context, r *Runner, state Patcher[T], tg Toggle[T]) (Outcome, error) {
	rec := model.ActionRecord{
		Field:    tg.Field,
		OldValue: strconv.FormatBool(tg.Current),
		NewValue: strconv.FormatBool(!tg.Current),
	}
	if !r.acquire(tg.Collection, tg.ID) {
		return r.finish(ctx, tg.Target, rec, busyOutcome(tg.Target)), ErrInFlight
	}
	defer r.release(tg.Collection, tg.ID)

	flag, err := tg.Flip(ctx)
	if err != nil {
		out := Outcome{
			Result: model.OutcomeFailed,
			Notice: notice(model.NoticeError, fmt.Sprintf("Failed to update %s status.", tg.Collection.Singular())),
		}
		return r.finish(ctx, tg.Target, rec, out), err
	}

	rec.NewValue = strconv.FormatBool(flag)
	state.Patch(tg.ID, func(t T) T { return tg.Apply(t, flag) })
	if tg.Menu != nil {
		tg.Menu.Close()
	}

	msg := fmt.Sprintf("Updated %s status.", tg.Collection.Singular())
	if tg.Message != nil {
		msg = tg.Message(flag)
	}
	return r.finish(ctx, tg.Target, rec, Outcome{
		Result: model.OutcomeApplied,
		Notice: notice(model.NoticeSuccess, msg),
		Value:  rec.NewValue,
	}), nil
}
