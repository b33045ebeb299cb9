package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/me/busdesk/internal/bookingapi"
	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/validate"
	"github.com/me/busdesk/pkg/model"
)

// ErrExportDisabled is returned by Publish when no bucket is configured.
var ErrExportDisabled = errors.New("export bucket not configured")

// CreateBus validates the add-bus form and creates the bus.
func (s *Service) CreateBus(ctx context.Context, sc Scope, f validate.BusForm) (rowaction.Outcome, error) {
	if err := sc.requireOwner(); err != nil {
		return rowaction.Outcome{}, err
	}
	if errs := s.validator.Bus(f); len(errs) > 0 {
		return invalid(errs)
	}
	return s.create(ctx, sc, model.CollectionBuses, f.ToBus(sc.OwnerID), nil)
}

// CreateRoute validates the add-route form and creates the route.
func (s *Service) CreateRoute(ctx context.Context, sc Scope, f validate.RouteForm) (rowaction.Outcome, error) {
	if err := sc.requireOwner(); err != nil {
		return rowaction.Outcome{}, err
	}
	if errs := s.validator.Route(f); len(errs) > 0 {
		return invalid(errs)
	}
	return s.create(ctx, sc, model.CollectionRoutes, f.ToRoute(sc.OwnerID), nil)
}

// CreateSchedule validates the add-schedule form, creates the schedule, and
// opens seat availability on each selected date.
func (s *Service) CreateSchedule(ctx context.Context, sc Scope, f validate.ScheduleForm) (rowaction.Outcome, error) {
	if err := sc.requireOwner(); err != nil {
		return rowaction.Outcome{}, err
	}
	if errs := s.validator.Schedule(f); len(errs) > 0 {
		return invalid(errs)
	}
	seats := func(ctx context.Context, res bookingapi.MutationResult) error {
		id := res.ResultID()
		if id == "" {
			return errors.New("create response carried no schedule id")
		}
		out, err := s.api.SetSeats(ctx, id, f.BusID, f.SeatSlots())
		if err != nil {
			return err
		}
		if !out.Success {
			return fmt.Errorf("set seats: %s", out.Message)
		}
		return nil
	}
	return s.create(ctx, sc, model.CollectionSchedules, f.ToSchedule(sc.OwnerID), seats)
}

func invalid(errs []model.FieldError) (rowaction.Outcome, error) {
	return rowaction.Outcome{Result: model.OutcomeInvalid, Fields: errs}, &rowaction.InvalidError{Fields: errs}
}

func (s *Service) create(ctx context.Context, sc Scope, coll model.Collection, body any, after func(context.Context, bookingapi.MutationResult) error) (rowaction.Outcome, error) {
	noun := coll.Singular()
	rec := model.ActionRecord{
		ClientID:   sc.ClientID,
		OwnerID:    sc.OwnerID,
		Collection: coll,
		Field:      "+",
	}

	res, err := s.api.Create(ctx, coll, body)
	if err != nil {
		out := s.report(ctx, rec, model.OutcomeFailed, model.NoticeError, fmt.Sprintf("Failed to create %s.", noun))
		return out, fmt.Errorf("create %s: %w", noun, err)
	}
	rec.EntityID = res.ResultID()
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = fmt.Sprintf("Failed to create %s.", noun)
		}
		out := s.report(ctx, rec, model.OutcomeRejected, model.NoticeError, msg)
		return out, fmt.Errorf("%w: %s", rowaction.ErrRejected, msg)
	}

	s.tables[coll].invalidate(sc)
	if after != nil {
		if err := after(ctx, res); err != nil {
			s.logger.Error("post-create step failed", "collection", coll, "id", rec.EntityID, "error", err)
			msg := fmt.Sprintf("The %s was created, but seat availability could not be set.", noun)
			return s.report(ctx, rec, model.OutcomeFailed, model.NoticeError, msg), err
		}
	}

	msg := res.Message
	if msg == "" {
		msg = fmt.Sprintf("The %s was created successfully.", noun)
	}
	return s.report(ctx, rec, model.OutcomeApplied, model.NoticeSuccess, msg), nil
}

// report queues the notice and journals a create.
func (s *Service) report(ctx context.Context, rec model.ActionRecord, result model.ActionOutcome, level model.NoticeLevel, msg string) rowaction.Outcome {
	n := model.Notice{ClientID: rec.ClientID, Level: level, Message: msg, CreatedAt: s.now()}
	if err := s.store.PushNotice(ctx, n); err != nil {
		s.logger.Warn("push notice", "client", rec.ClientID, "error", err)
	}
	rec.Outcome = result
	rec.Message = msg
	rec.CreatedAt = n.CreatedAt
	if err := s.store.RecordAction(ctx, rec); err != nil {
		s.logger.Warn("record action", "collection", rec.Collection, "error", err)
	}
	return rowaction.Outcome{Result: result, Notice: n, Value: rec.EntityID}
}

// Export renders every row of a collection that passes the criteria.
func (s *Service) Export(ctx context.Context, sc Scope, coll model.Collection, c model.FilterCriteria) (export.Table, error) {
	t, err := s.lookup(coll)
	if err != nil {
		return export.Table{}, err
	}
	return t.export(ctx, sc, c)
}

// Publish uploads an export to the configured bucket and returns its key.
func (s *Service) Publish(ctx context.Context, sc Scope, coll model.Collection, c model.FilterCriteria) (string, error) {
	if s.publisher == nil {
		return "", ErrExportDisabled
	}
	tbl, err := s.Export(ctx, sc, coll, c)
	if err != nil {
		return "", err
	}
	return s.publisher.Publish(ctx, string(coll), tbl)
}

// Summary holds the dashboard counts.
type Summary struct {
	Owners        int
	BlockedOwners int
	Buses         int
	Routes        int
	Schedules     int
	Bookings      int
	Revenue       float64
}

// Summary counts the collections visible to sc. Owner-scoped counts stay
// zero when no owner is selected.
func (s *Service) Summary(ctx context.Context, sc Scope, refresh bool) (Summary, error) {
	var (
		sum  Summary
		errs []error
	)
	if owners, err := s.loadOwners(ctx, sc, refresh); err != nil {
		errs = append(errs, err)
	} else {
		sum.Owners = len(owners)
		for _, o := range owners {
			if o.IsBlocked {
				sum.BlockedOwners++
			}
		}
	}
	if sc.OwnerID == "" {
		return sum, errors.Join(errs...)
	}
	if buses, err := s.loadBuses(ctx, sc, refresh); err != nil {
		errs = append(errs, err)
	} else {
		sum.Buses = len(buses)
	}
	if routes, err := s.loadRoutes(ctx, sc, refresh); err != nil {
		errs = append(errs, err)
	} else {
		sum.Routes = len(routes)
	}
	if schedules, err := s.loadSchedules(ctx, sc, refresh); err != nil {
		errs = append(errs, err)
	} else {
		sum.Schedules = len(schedules)
	}
	if bookings, err := s.loadBookings(ctx, sc, refresh); err != nil {
		errs = append(errs, err)
	} else {
		sum.Bookings = len(bookings)
		for _, b := range bookings {
			if b.IsConfirmed() {
				sum.Revenue += b.TotalAmount
			}
		}
	}
	return sum, errors.Join(errs...)
}
