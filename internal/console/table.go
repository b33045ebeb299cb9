package console

import (
	"context"
	"fmt"

	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/internal/listcache"
	"github.com/me/busdesk/internal/listview"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/validate"
	"github.com/me/busdesk/pkg/model"
)

// ViewResult is a computed page with the item type erased.
type ViewResult struct {
	Collection model.Collection
	Items      any
	Pagination *model.Pagination
}

// FieldPrompt is everything needed to render an edit prompt.
type FieldPrompt struct {
	Collection model.Collection
	ID         string
	Field      string
	Input      string
	Question   rowaction.Question
}

type tableOps interface {
	viewAny(ctx context.Context, sc Scope, q Query) (ViewResult, error)
	itemsAny(ctx context.Context, sc Scope, refresh bool) (any, error)
	record(ctx context.Context, sc Scope, id string) (any, error)
	prompt(ctx context.Context, sc Scope, id, field string) (FieldPrompt, error)
	edit(ctx context.Context, sc Scope, id, field string, p rowaction.Prompter) (rowaction.Outcome, error)
	remove(ctx context.Context, sc Scope, id string, c rowaction.Confirmer) (rowaction.Outcome, error)
	export(ctx context.Context, sc Scope, c model.FilterCriteria) (export.Table, error)
	invalidate(sc Scope)
}

type loadFunc[T any] func(ctx context.Context, sc Scope, refresh bool) ([]T, error)

// accessor reads and writes one editable field as prompt text.
type accessor[T any] struct {
	get func(T) string
	set func(T, string) T
	// encode converts validated text to the JSON value sent upstream.
	encode func(string) any
	// choices lists the allowed answers, when restricted.
	choices func(ctx context.Context, sc Scope) ([]rowaction.Choice, error)
}

// table binds one collection's cache, filter schema, and row actions.
type table[T listview.Record] struct {
	svc       *Service
	coll      model.Collection
	cache     *listcache.Cache[T]
	fields    listview.Fields[T]
	load      loadFunc[T]
	edits     map[string]accessor[T]
	deletable bool
	render    func(ctx context.Context, sc Scope, items []T) (export.Table, error)
}

func newTable[T listview.Record](s *Service, coll model.Collection, fields listview.Fields[T], load loadFunc[T]) (*table[T], error) {
	c, err := listcache.New[T](string(coll), 0, s.ttl, s.logger)
	if err != nil {
		return nil, err
	}
	return &table[T]{svc: s, coll: coll, cache: c, fields: fields, load: load}, nil
}

func (t *table[T]) key(sc Scope) listcache.Key {
	if t.coll.OwnerScoped() {
		return sc.key()
	}
	return sc.globalKey()
}

func (t *table[T]) view(ctx context.Context, sc Scope, q Query) (listview.View[T], error) {
	items, err := t.load(ctx, sc, q.Refresh)
	if err != nil {
		return listview.View[T]{}, fmt.Errorf("load %s: %w", t.coll, err)
	}
	return listview.ComputeView(items, t.fields, q.Criteria, q.Page, t.svc.pageSize, t.svc.now()), nil
}

func (t *table[T]) viewAny(ctx context.Context, sc Scope, q Query) (ViewResult, error) {
	v, err := t.view(ctx, sc, q)
	if err != nil {
		return ViewResult{}, err
	}
	return ViewResult{Collection: t.coll, Items: v.Items, Pagination: v.Pagination()}, nil
}

func (t *table[T]) itemsAny(ctx context.Context, sc Scope, refresh bool) (any, error) {
	items, err := t.load(ctx, sc, refresh)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", t.coll, err)
	}
	return items, nil
}

func (t *table[T]) find(ctx context.Context, sc Scope, id string) (T, error) {
	items, err := t.load(ctx, sc, false)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("load %s: %w", t.coll, err)
	}
	rec, ok := listview.Lookup(items, id)
	if !ok {
		return rec, model.NewNotFoundError(t.coll.Singular(), id)
	}
	return rec, nil
}

func (t *table[T]) record(ctx context.Context, sc Scope, id string) (any, error) {
	return t.find(ctx, sc, id)
}

func (t *table[T]) accessor(field string) (accessor[T], validate.FieldRule, error) {
	acc, ok := t.edits[field]
	rule, hasRule := validate.Rule(t.coll, field)
	if !ok || !hasRule {
		return acc, rule, model.NewValidationError(
			fmt.Sprintf("%s field %q is not editable", t.coll.Singular(), field),
			model.FieldError{Field: "field", Message: "Unknown field"})
	}
	return acc, rule, nil
}

func (t *table[T]) prompt(ctx context.Context, sc Scope, id, field string) (FieldPrompt, error) {
	acc, rule, err := t.accessor(field)
	if err != nil {
		return FieldPrompt{}, err
	}
	rec, err := t.find(ctx, sc, id)
	if err != nil {
		return FieldPrompt{}, err
	}
	q := rowaction.Question{
		Title:   "Edit " + rule.Label,
		Label:   "Enter new " + rule.Label + ":",
		Current: acc.get(rec),
	}
	if acc.choices != nil {
		if q.Choices, err = acc.choices(ctx, sc); err != nil {
			return FieldPrompt{}, err
		}
		q.Label = "Select new " + rule.Label + ":"
	}
	return FieldPrompt{Collection: t.coll, ID: id, Field: field, Input: rule.Input, Question: q}, nil
}

func (t *table[T]) edit(ctx context.Context, sc Scope, id, field string, p rowaction.Prompter) (rowaction.Outcome, error) {
	fp, err := t.prompt(ctx, sc, id, field)
	if err != nil {
		return rowaction.Outcome{}, err
	}
	acc := t.edits[field]
	var allowed []string
	if fp.Question.Choices != nil {
		allowed = make([]string, 0, len(fp.Question.Choices))
		for _, c := range fp.Question.Choices {
			allowed = append(allowed, c.Value)
		}
	}
	api := t.svc.api
	return rowaction.EditField(ctx, t.svc.runner, t.cache.Bind(t.key(sc)), p, rowaction.Edit[T]{
		Target:   t.target(sc, id),
		Field:    field,
		Question: fp.Question,
		Current:  fp.Question.Current,
		Validate: func(v string) *model.FieldError {
			return t.svc.validator.Field(t.coll, field, v, allowed)
		},
		Update: func(ctx context.Context, v string) (rowaction.Reply, error) {
			res, err := api.UpdateField(ctx, t.coll, id, field, acc.encode(v))
			if err != nil {
				return rowaction.Reply{}, err
			}
			reply := rowaction.Reply{Success: res.Success, Message: res.Message}
			reply.Value, reply.HasValue = res.FieldValue(field)
			return reply, nil
		},
		Apply: acc.set,
	})
}

func (t *table[T]) remove(ctx context.Context, sc Scope, id string, c rowaction.Confirmer) (rowaction.Outcome, error) {
	if !t.deletable {
		return rowaction.Outcome{}, model.NewValidationError(fmt.Sprintf("%s cannot be deleted", t.coll))
	}
	if _, err := t.find(ctx, sc, id); err != nil {
		return rowaction.Outcome{}, err
	}
	api := t.svc.api
	return rowaction.DeleteRecord[T](ctx, t.svc.runner, t.cache.Bind(t.key(sc)), c, rowaction.Delete{
		Target:   t.target(sc, id),
		Question: DeleteQuestion(t.coll),
		Remove: func(ctx context.Context) (rowaction.Reply, error) {
			res, err := api.Delete(ctx, t.coll, id)
			if err != nil {
				return rowaction.Reply{}, err
			}
			return rowaction.Reply{Success: res.Success, Message: res.Message}, nil
		},
	})
}

func (t *table[T]) export(ctx context.Context, sc Scope, c model.FilterCriteria) (export.Table, error) {
	items, err := t.load(ctx, sc, false)
	if err != nil {
		return export.Table{}, fmt.Errorf("load %s: %w", t.coll, err)
	}
	return t.render(ctx, sc, listview.Filter(items, t.fields, c, t.svc.now()))
}

func (t *table[T]) invalidate(sc Scope) {
	t.cache.Invalidate(t.key(sc))
}

func (t *table[T]) target(sc Scope, id string) rowaction.Target {
	return rowaction.Target{
		ClientID:   sc.ClientID,
		OwnerID:    sc.OwnerID,
		Collection: t.coll,
		ID:         id,
		Menu:       t.svc.Menu(sc.ClientID, t.coll),
	}
}
