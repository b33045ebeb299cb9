package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/validate"
	"github.com/me/busdesk/pkg/model"
)

// routeCollection resolves the table a row route belongs to. Routes under
// /admin/owners carry no {collection} parameter.
func routeCollection(r *http.Request) (model.Collection, string, bool) {
	if chi.URLParam(r, "collection") == "" {
		return model.CollectionOwners, "/admin/owners", true
	}
	c, ok := ownerCollection(r)
	return c, "/owner/" + string(c), ok
}

// HandleMenu toggles a row's action menu and returns to the table.
func (ui *UI) HandleMenu(w http.ResponseWriter, r *http.Request) {
	coll, base, ok := routeCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	ui.svc.ClickMenu(ClientFromContext(r.Context()), coll, chi.URLParam(r, "id"))
	http.Redirect(w, r, returnTo(r, base), http.StatusSeeOther)
}

// HandleToggle blocks or unblocks an owner.
func (ui *UI) HandleToggle(w http.ResponseWriter, r *http.Request) {
	sc := ui.scope(w, r)
	id := chi.URLParam(r, "id")
	out, err := ui.svc.ToggleOwner(r.Context(), sc, id)
	if err != nil && out.Result == "" {
		ui.renderError(w, "Failed to update owner", err)
		return
	}
	http.Redirect(w, r, returnTo(r, "/admin/owners"), http.StatusSeeOther)
}

// HandleEditPrompt renders the prompt for editing one field.
func (ui *UI) HandleEditPrompt(w http.ResponseWriter, r *http.Request) {
	coll, base, ok := routeCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	sc := ui.scope(w, r)
	fp, err := ui.svc.Prompt(r.Context(), sc, coll, chi.URLParam(r, "id"), chi.URLParam(r, "field"))
	if err != nil {
		ui.renderError(w, "Cannot edit this field", err)
		return
	}
	data := ui.page(r, sc, fp.Question.Title)
	data["Prompt"] = fp
	data["Value"] = fp.Question.Current
	data["Return"] = returnTo(r, base)
	ui.render(w, "prompt", data)
}

// HandleEdit applies a submitted prompt answer.
func (ui *UI) HandleEdit(w http.ResponseWriter, r *http.Request) {
	coll, base, ok := routeCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	if err := r.ParseForm(); err != nil {
		ui.renderStatus(w, http.StatusBadRequest, "error", map[string]any{"Title": "Bad Request - Busdesk", "Message": "Invalid form"})
		return
	}
	sc := ui.scope(w, r)
	id, field := chi.URLParam(r, "id"), chi.URLParam(r, "field")
	back := returnTo(r, base)
	ans := rowaction.Answered{Value: r.FormValue("value"), OK: r.FormValue("action") != "cancel"}

	out, err := ui.svc.Edit(r.Context(), sc, coll, id, field, ans)
	if inv, bad := isInvalid(err); bad {
		fp, perr := ui.svc.Prompt(r.Context(), sc, coll, id, field)
		if perr != nil {
			ui.renderError(w, "Cannot edit this field", perr)
			return
		}
		data := ui.page(r, sc, fp.Question.Title)
		data["Prompt"] = fp
		data["Value"] = ans.Value
		data["Error"] = inv.Error()
		data["Return"] = back
		ui.renderStatus(w, http.StatusUnprocessableEntity, "prompt", data)
		return
	}
	if err != nil && out.Result == "" {
		ui.renderError(w, "Cannot edit this field", err)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleDeleteConfirm renders the delete confirmation.
func (ui *UI) HandleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	coll, base, ok := routeCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	sc := ui.scope(w, r)
	id := chi.URLParam(r, "id")
	if _, err := ui.svc.Record(r.Context(), sc, coll, id); err != nil {
		ui.renderError(w, "Cannot delete this "+coll.Singular(), err)
		return
	}
	q := console.DeleteQuestion(coll)
	data := ui.page(r, sc, q.Title)
	data["Question"] = q
	data["Return"] = returnTo(r, base)
	ui.render(w, "confirm", data)
}

// HandleDelete applies a delete confirmation.
func (ui *UI) HandleDelete(w http.ResponseWriter, r *http.Request) {
	coll, base, ok := routeCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	sc := ui.scope(w, r)
	confirmed := rowaction.Confirmed(r.FormValue("action") == "confirm")
	out, err := ui.svc.Delete(r.Context(), sc, coll, chi.URLParam(r, "id"), confirmed)
	if err != nil && out.Result == "" {
		ui.renderError(w, "Cannot delete this "+coll.Singular(), err)
		return
	}
	http.Redirect(w, r, returnTo(r, base), http.StatusSeeOther)
}

// HandleCreateForm renders the add form of a table.
func (ui *UI) HandleCreateForm(w http.ResponseWriter, r *http.Request) {
	coll, ok := ownerCollection(r)
	if !ok || coll == model.CollectionBookings {
		ui.renderNotFound(w, "Nothing to add here")
		return
	}
	sc := ui.scope(w, r)
	data, err := ui.formData(r, sc, coll)
	if err != nil {
		if needsOwner(err) {
			ui.render(w, "select_owner", data)
			return
		}
		ui.renderError(w, "Failed to load form", err)
		return
	}
	data["Values"] = map[string]string{}
	data["Errors"] = map[string]string{}
	ui.render(w, "form_"+coll.Singular(), data)
}

// HandleCreate submits an add form.
func (ui *UI) HandleCreate(w http.ResponseWriter, r *http.Request) {
	coll, ok := ownerCollection(r)
	if !ok || coll == model.CollectionBookings {
		ui.renderNotFound(w, "Nothing to add here")
		return
	}
	if err := r.ParseForm(); err != nil {
		ui.renderStatus(w, http.StatusBadRequest, "error", map[string]any{"Title": "Bad Request - Busdesk", "Message": "Invalid form"})
		return
	}
	sc := ui.scope(w, r)
	ctx := r.Context()

	var (
		out rowaction.Outcome
		err error
	)
	switch coll {
	case model.CollectionBuses:
		out, err = ui.svc.CreateBus(ctx, sc, validate.BusForm{
			Name:       r.FormValue("name"),
			Type:       r.FormValue("type"),
			Status:     r.FormValue("status"),
			AC:         r.FormValue("ac"),
			SeatsTotal: strings.TrimSpace(r.FormValue("seatsTotal")),
		})
	case model.CollectionRoutes:
		out, err = ui.svc.CreateRoute(ctx, sc, validate.RouteForm{
			Source:        r.FormValue("source"),
			Destination:   r.FormValue("destination"),
			Distance:      strings.TrimSpace(r.FormValue("distance")),
			EstimatedTime: strings.TrimSpace(r.FormValue("estimatedTime")),
			PickupStops:   r.FormValue("pickupStops"),
			DropStops:     r.FormValue("dropStops"),
		})
	case model.CollectionSchedules:
		out, err = ui.svc.CreateSchedule(ctx, sc, validate.ScheduleForm{
			Price:      strings.TrimSpace(r.FormValue("price")),
			StartTime:  r.FormValue("startTime"),
			EndTime:    r.FormValue("endTime"),
			BusID:      r.FormValue("busId"),
			RouteID:    r.FormValue("routeId"),
			OperatorID: r.FormValue("operatorId"),
			Dates:      nonEmpty(r.Form["dates"]),
		})
	}

	if inv, bad := isInvalid(err); bad {
		data, ferr := ui.formData(r, sc, coll)
		if ferr != nil {
			ui.renderError(w, "Failed to load form", ferr)
			return
		}
		values := map[string]string{}
		for k := range r.PostForm {
			values[k] = r.PostForm.Get(k)
		}
		errs := map[string]string{}
		for _, fe := range inv.Fields {
			errs[fe.Field] = fe.Message
		}
		data["Values"] = values
		data["Dates"] = nonEmpty(r.Form["dates"])
		data["Errors"] = errs
		ui.renderStatus(w, http.StatusUnprocessableEntity, "form_"+coll.Singular(), data)
		return
	}
	if err != nil && out.Result == "" {
		ui.renderError(w, "Failed to add "+coll.Singular(), err)
		return
	}
	http.Redirect(w, r, "/owner/"+string(coll), http.StatusSeeOther)
}

func (ui *UI) formData(r *http.Request, sc console.Scope, coll model.Collection) (map[string]any, error) {
	data := ui.page(r, sc, "Add "+coll.Singular())
	data["Collection"] = coll
	if coll == model.CollectionSchedules {
		sib, err := ui.svc.Siblings(r.Context(), sc, false)
		if err != nil {
			return data, err
		}
		data["Siblings"] = sib
	}
	return data, nil
}

// HandleExport downloads the filtered rows of a table as CSV.
func (ui *UI) HandleExport(w http.ResponseWriter, r *http.Request) {
	coll, _, ok := routeCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	sc := ui.scope(w, r)
	tbl, err := ui.svc.Export(r.Context(), sc, coll, parseQuery(r).Criteria)
	if err != nil {
		ui.renderError(w, "Failed to export "+string(coll), err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(coll)+".csv"))
	if err := export.WriteCSV(w, tbl); err != nil {
		ui.logger.Error("write csv", "collection", coll, "error", err)
	}
}

// HandlePublish uploads the filtered rows of a table to the export bucket.
func (ui *UI) HandlePublish(w http.ResponseWriter, r *http.Request) {
	coll, base, ok := routeCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	sc := ui.scope(w, r)
	back := returnTo(r, base)
	crit := model.FilterCriteria{
		SearchText:   r.FormValue("search"),
		StatusFilter: model.ParseStatusFilter(r.FormValue("status")),
		DateFilter:   model.DateFilter(r.FormValue("date")),
	}
	key, err := ui.svc.Publish(r.Context(), sc, coll, crit)
	switch {
	case errors.Is(err, console.ErrExportDisabled):
		ui.svc.PushNotice(r.Context(), sc.ClientID, model.NoticeNeutral, "No export bucket is configured.")
	case err != nil:
		ui.logger.Error("publish export", "collection", coll, "error", err)
		ui.svc.PushNotice(r.Context(), sc.ClientID, model.NoticeError, "Failed to upload the export.")
	default:
		ui.svc.PushNotice(r.Context(), sc.ClientID, model.NoticeSuccess, "Export uploaded to "+key+".")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func nonEmpty(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
