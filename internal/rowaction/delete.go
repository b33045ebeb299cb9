package rowaction

import (
	"context"
	"fmt"

	"github.com/me/busdesk/pkg/model"
)

// Delete describes the removal of one record.
type Delete struct {
	Target
	Question Question
	Remove   func(ctx context.Context) (Reply, error)
}

// DeleteRecord asks for confirmation, deletes remotely, and on success drops
// the record from state.
func DeleteRecord[T any](ctx context.Context, r *Runner, state Patcher[T], c Confirmer, d Delete) (Outcome, error) {
	noun := d.Collection.Singular()
	rec := model.ActionRecord{Field: "*"}

	ok, err := c.Confirm(ctx, d.Question)
	if err != nil {
		return Outcome{}, fmt.Errorf("confirm delete %s: %w", noun, err)
	}
	if !ok {
		return r.finish(ctx, d.Target, rec, Outcome{
			Result: model.OutcomeCancelled,
			Notice: notice(model.NoticeNeutral, fmt.Sprintf("The %s was not deleted.", noun)),
		}), ErrCancelled
	}

	if !r.acquire(d.Collection, d.ID) {
		return r.finish(ctx, d.Target, rec, busyOutcome(d.Target)), ErrInFlight
	}
	defer r.release(d.Collection, d.ID)

	reply, err := d.Remove(ctx)
	if err != nil || !reply.Success {
		out, rerr := remoteFailure(reply, err, fmt.Sprintf("Failed to delete %s.", noun))
		return r.finish(ctx, d.Target, rec, out), rerr
	}

	state.Remove(d.ID)
	if d.Menu != nil {
		d.Menu.Close()
	}
	msg := reply.Message
	if msg == "" {
		msg = fmt.Sprintf("Deleted %s.", noun)
	}
	return r.finish(ctx, d.Target, rec, Outcome{
		Result: model.OutcomeApplied,
		Notice: notice(model.NoticeSuccess, msg),
	}), nil
}
