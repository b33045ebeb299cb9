package ui

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/busdesk/internal/validate"
	"github.com/me/busdesk/pkg/model"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02")
	},
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return humanize.Time(t)
	},
	"money": func(f float64) string {
		return humanize.CommafWithDigits(f, 2)
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
	"stops": model.JoinStops,
	"noticeClass": func(l model.NoticeLevel) string {
		switch l {
		case model.NoticeSuccess:
			return "bg-green-50 text-green-800 border-green-200"
		case model.NoticeError:
			return "bg-red-50 text-red-800 border-red-200"
		default:
			return "bg-gray-50 text-gray-800 border-gray-200"
		}
	},
	"outcomeClass": func(o model.ActionOutcome) string {
		switch o {
		case model.OutcomeApplied:
			return "bg-green-100 text-green-800"
		case model.OutcomeFailed, model.OutcomeRejected:
			return "bg-red-100 text-red-800"
		case model.OutcomeBusy, model.OutcomeInvalid:
			return "bg-yellow-100 text-yellow-800"
		default:
			return "bg-gray-100 text-gray-800"
		}
	},
	"activeBadge": func(active bool) string {
		if active {
			return "bg-green-100 text-green-800"
		}
		return "bg-red-100 text-red-800"
	},
	"editFields": func(c model.Collection) []string {
		return validate.EditableFields(c)
	},
	"fieldLabel": func(c model.Collection, field string) string {
		if r, ok := validate.Rule(c, field); ok {
			return r.Label
		}
		return field
	},
	"add": func(a, b int) int {
		return a + b
	},
	"sub": func(a, b int) int {
		return a - b
	},
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, errors.New("dict needs key/value pairs")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
}

// renderTemplate renders a template with the given data.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if _, err = tmpl.New("content").Parse(content); err != nil {
		return fmt.Errorf("parse content: %w", err)
	}

	// Add shared components.
	for compName, compContent := range templates {
		if strings.HasPrefix(compName, "components/") {
			if _, err = tmpl.New(filepath.Base(compName)).Parse(compContent); err != nil {
				return fmt.Errorf("parse component %s: %w", compName, err)
			}
		}
	}

	return tmpl.Execute(w, data)
}

// templates holds all template content.
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-50 min-h-screen">
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
            <div class="flex justify-between h-16">
                <div class="flex">
                    <a href="/" class="flex items-center px-2 py-2 text-xl font-bold text-indigo-600">Busdesk</a>
                    <div class="hidden sm:ml-6 sm:flex sm:space-x-8">
                        <a href="/admin/owners" class="border-transparent text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">Owners</a>
                        <a href="/owner/buses" class="border-transparent text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">Buses</a>
                        <a href="/owner/routes" class="border-transparent text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">Routes</a>
                        <a href="/owner/schedules" class="border-transparent text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">Schedules</a>
                        <a href="/owner/bookings" class="border-transparent text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">Bookings</a>
                        <a href="/activity" class="border-transparent text-gray-500 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">Activity</a>
                    </div>
                </div>
                <div class="flex items-center">
                    <form method="GET" action="{{.Path}}" class="flex items-center space-x-2">
                        <label for="owner" class="text-sm text-gray-500">Owner</label>
                        <input id="owner" name="owner" value="{{.Owner}}" placeholder="owner id"
                               class="w-40 px-2 py-1 border border-gray-300 rounded-md text-sm">
                    </form>
                </div>
            </div>
        </div>
    </nav>

    <main class="max-w-7xl mx-auto py-6 sm:px-6 lg:px-8">
        {{range .Notices}}
        <div class="mb-4 border rounded-md px-4 py-3 text-sm {{noticeClass .Level}}" role="status">{{.Message}}</div>
        {{end}}
        {{template "content" .}}
    </main>
</body>
</html>`,

	"components/filters": `{{define "filters"}}
<form method="GET" action="{{.List.Base}}" class="flex flex-wrap items-end gap-3 mb-4">
    <div>
        <label for="search" class="block text-xs font-medium text-gray-500">Search</label>
        <input id="search" name="search" value="{{.List.Search}}" placeholder="Search"
               class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">
    </div>
    {{if .StatusFilter}}
    <div>
        <label for="status" class="block text-xs font-medium text-gray-500">Status</label>
        <select id="status" name="status" class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">
            <option value="" {{if eq .List.Status ""}}selected{{end}}>All</option>
            <option value="active" {{if eq .List.Status "active"}}selected{{end}}>Active</option>
            <option value="blocked" {{if eq .List.Status "blocked"}}selected{{end}}>Inactive</option>
        </select>
    </div>
    {{end}}
    <div>
        <label for="date" class="block text-xs font-medium text-gray-500">Created</label>
        <select id="date" name="date" class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">
            <option value="" {{if eq .List.Date ""}}selected{{end}}>Any time</option>
            <option value="last_7_days" {{if eq .List.Date "last_7_days"}}selected{{end}}>Last 7 days</option>
            <option value="last_30_days" {{if eq .List.Date "last_30_days"}}selected{{end}}>Last 30 days</option>
            <option value="last_90_days" {{if eq .List.Date "last_90_days"}}selected{{end}}>Last 90 days</option>
        </select>
    </div>
    <button type="submit" class="px-4 py-2 text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">Apply</button>
    <a href="{{.List.RefreshURL}}" class="px-4 py-2 text-sm font-medium rounded-md border border-gray-300 text-gray-700 bg-white hover:bg-gray-50">Refresh</a>
    <a href="{{.List.ExportURL}}" class="px-4 py-2 text-sm font-medium rounded-md border border-gray-300 text-gray-700 bg-white hover:bg-gray-50">Export CSV</a>
</form>
{{end}}`,

	"components/pager": `{{define "pager"}}
<div class="mt-4 flex items-center justify-between">
    <span class="text-sm text-gray-500">{{.RangeLabel}}</span>
    {{if gt .TotalPages 1}}
    <nav class="flex items-center space-x-1">
        {{if .HasPrev}}<a href="{{.PageURL (sub .Page 1)}}" class="px-3 py-1 border border-gray-300 rounded text-sm">Previous</a>{{end}}
        {{$cur := .Page}}
        {{range .Pages}}
        <a href="{{$.PageURL .}}" class="px-3 py-1 border rounded text-sm {{if eq . $cur}}bg-indigo-600 text-white border-indigo-600{{else}}border-gray-300{{end}}">{{.}}</a>
        {{end}}
        {{if .HasNext}}<a href="{{.PageURL (add .Page 1)}}" class="px-3 py-1 border border-gray-300 rounded text-sm">Next</a>{{end}}
    </nav>
    {{end}}
</div>
{{end}}`,

	"components/rowmenu": `{{define "rowmenu"}}
<div class="relative inline-block text-left">
    {{if .List.Busy .ID}}
    <span class="px-2 py-1 text-gray-300 cursor-wait" aria-label="Actions" aria-disabled="true" title="Update in progress">&#8942;</span>
    {{else}}
    <a href="{{.List.RowURL .ID "menu"}}" class="px-2 py-1 text-gray-500 hover:text-gray-700" aria-label="Actions">&#8942;</a>
    {{end}}
    {{if and (eq .List.OpenMenu .ID) (not (.List.Busy .ID))}}
    <div class="absolute right-0 z-10 mt-2 w-48 rounded-md bg-white shadow-lg ring-1 ring-black ring-opacity-5">
        {{$list := .List}}{{$id := .ID}}{{$coll := .Collection}}
        {{range editFields .Collection}}
        <a href="{{$list.RowURL $id (print "edit/" .)}}" class="block px-4 py-2 text-sm text-gray-700 hover:bg-gray-100">Edit {{fieldLabel $coll .}}</a>
        {{end}}
        <a href="{{.List.RowURL .ID "delete"}}" class="block px-4 py-2 text-sm text-red-700 hover:bg-red-50">Delete</a>
    </div>
    {{end}}
</div>
{{end}}`,

	"dashboard": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="mb-8">
        <h1 class="text-2xl font-semibold text-gray-900">Dashboard</h1>
        <p class="mt-1 text-sm text-gray-500">Up {{.Uptime}}{{if .Owner}} &middot; owner {{.Owner}}{{end}}</p>
    </div>
    {{if .LoadError}}
    <div class="mb-4 rounded-md bg-yellow-50 p-4 text-sm text-yellow-800">{{.LoadError}}</div>
    {{end}}
    <div class="grid grid-cols-1 gap-5 sm:grid-cols-2 lg:grid-cols-3">
        <a href="/admin/owners" class="bg-white shadow rounded-lg p-5">
            <dt class="text-sm font-medium text-gray-500">Owners</dt>
            <dd class="text-lg font-semibold text-gray-900">{{comma .Summary.Owners}} <span class="text-sm text-red-600">({{.Summary.BlockedOwners}} blocked)</span></dd>
        </a>
        {{if .Owner}}
        <a href="/owner/buses" class="bg-white shadow rounded-lg p-5">
            <dt class="text-sm font-medium text-gray-500">Buses</dt>
            <dd class="text-lg font-semibold text-gray-900">{{comma .Summary.Buses}}</dd>
        </a>
        <a href="/owner/routes" class="bg-white shadow rounded-lg p-5">
            <dt class="text-sm font-medium text-gray-500">Routes</dt>
            <dd class="text-lg font-semibold text-gray-900">{{comma .Summary.Routes}}</dd>
        </a>
        <a href="/owner/schedules" class="bg-white shadow rounded-lg p-5">
            <dt class="text-sm font-medium text-gray-500">Schedules</dt>
            <dd class="text-lg font-semibold text-gray-900">{{comma .Summary.Schedules}}</dd>
        </a>
        <a href="/owner/bookings" class="bg-white shadow rounded-lg p-5">
            <dt class="text-sm font-medium text-gray-500">Bookings</dt>
            <dd class="text-lg font-semibold text-gray-900">{{comma .Summary.Bookings}}</dd>
        </a>
        <div class="bg-white shadow rounded-lg p-5">
            <dt class="text-sm font-medium text-gray-500">Revenue</dt>
            <dd class="text-lg font-semibold text-green-700">&#8377;{{money .Summary.Revenue}}</dd>
        </div>
        {{else}}
        <div class="bg-white shadow rounded-lg p-5 text-sm text-gray-500">Enter an owner id above to see fleet counts.</div>
        {{end}}
    </div>
</div>
{{end}}`,

	"error": `{{define "content"}}
<div class="min-h-screen flex items-center justify-center">
    <div class="text-center">
        <h1 class="text-4xl font-bold text-gray-900 mb-4">Error</h1>
        <p class="text-gray-600 mb-8">{{.Message}}</p>
        <a href="/" class="text-indigo-600 hover:text-indigo-500">Return to Dashboard</a>
    </div>
</div>
{{end}}`,

	"select_owner": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-4">{{.Heading}}</h1>
    <div class="bg-white shadow rounded-lg p-6">
        <form method="GET" action="{{.Path}}" class="flex items-end gap-3">
            <div>
                <label for="owner-select" class="block text-sm font-medium text-gray-700">Owner id</label>
                <input id="owner-select" name="owner" required class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">
            </div>
            <button type="submit" class="px-4 py-2 text-sm font-medium rounded-md text-white bg-indigo-600">Show</button>
        </form>
    </div>
</div>
{{end}}`,

	"owners": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Owners</h1>
    {{template "filters" (dict "List" .List "StatusFilter" true)}}
    <div class="bg-white shadow overflow-visible sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Name</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Email</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Phone</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Status</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Joined</th>
                    <th class="px-4 py-3"></th>
                </tr>
            </thead>
            <tbody class="divide-y divide-gray-200">
                {{$list := .List}}
                {{range .Items}}
                <tr>
                    <td class="px-4 py-3 text-sm font-medium text-gray-900">{{.Name}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.Email}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.Phone}}</td>
                    <td class="px-4 py-3 text-sm"><span class="px-2 py-0.5 rounded-full text-xs {{activeBadge (not .IsBlocked)}}">{{.StatusLabel}}</span></td>
                    <td class="px-4 py-3 text-sm text-gray-500" title="{{formatTime .CreatedAt}}">{{ago .CreatedAt}}</td>
                    <td class="px-4 py-3 text-right text-sm">
                        {{if $list.Busy .ID}}
                        <span class="px-2 py-1 text-gray-300 cursor-wait" aria-label="Actions" aria-disabled="true" title="Update in progress">&#8942;</span>
                        {{else}}
                        <a href="{{$list.RowURL .ID "menu"}}" class="px-2 py-1 text-gray-500" aria-label="Actions">&#8942;</a>
                        {{end}}
                        {{if eq $list.OpenMenu .ID}}
                        <form method="POST" action="/admin/owners/{{.ID}}/toggle" class="inline">
                            <input type="hidden" name="return" value="{{$list.Self}}">
                            <button type="submit" {{if $list.Busy .ID}}disabled {{end}}class="px-3 py-1 text-xs rounded border {{if .IsBlocked}}border-green-300 text-green-700{{else}}border-red-300 text-red-700{{end}}">
                                {{if .IsBlocked}}Unblock{{else}}Block{{end}}
                            </button>
                        </form>
                        {{end}}
                    </td>
                </tr>
                {{else}}
                <tr><td colspan="6" class="px-4 py-8 text-center text-gray-500">No owners found.</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{template "pager" .List}}
</div>
{{end}}`,

	"buses": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="flex justify-between items-center mb-6">
        <h1 class="text-2xl font-semibold text-gray-900">Buses</h1>
        <a href="/owner/buses/new" class="px-4 py-2 text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">Add Bus</a>
    </div>
    {{template "filters" (dict "List" .List "StatusFilter" true)}}
    <div class="bg-white shadow overflow-visible sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Name</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Type</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">AC</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Seats</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Status</th>
                    <th class="px-4 py-3"></th>
                </tr>
            </thead>
            <tbody class="divide-y divide-gray-200">
                {{$list := .List}}{{$coll := .Collection}}
                {{range .Items}}
                <tr>
                    <td class="px-4 py-3 text-sm font-medium text-gray-900">{{.Name}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.Type}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{if .AC}}Yes{{else}}No{{end}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.SeatsTotal}}</td>
                    <td class="px-4 py-3 text-sm"><span class="px-2 py-0.5 rounded-full text-xs {{activeBadge (not .IsInactive)}}">{{.Status}}</span></td>
                    <td class="px-4 py-3 text-right">{{template "rowmenu" (dict "List" $list "Collection" $coll "ID" .ID)}}</td>
                </tr>
                {{else}}
                <tr><td colspan="6" class="px-4 py-8 text-center text-gray-500">No buses found.</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{template "pager" .List}}
</div>
{{end}}`,

	"routes": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="flex justify-between items-center mb-6">
        <h1 class="text-2xl font-semibold text-gray-900">Routes</h1>
        <a href="/owner/routes/new" class="px-4 py-2 text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">Add Route</a>
    </div>
    {{template "filters" (dict "List" .List "StatusFilter" false)}}
    <div class="bg-white shadow overflow-visible sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Route</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Distance (km)</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Time (h)</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Pickup</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Drop</th>
                    <th class="px-4 py-3"></th>
                </tr>
            </thead>
            <tbody class="divide-y divide-gray-200">
                {{$list := .List}}{{$coll := .Collection}}
                {{range .Items}}
                <tr>
                    <td class="px-4 py-3 text-sm font-medium text-gray-900">{{.Label}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.Distance}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.EstimatedTime}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{stops .PickupStops}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{stops .DropStops}}</td>
                    <td class="px-4 py-3 text-right">{{template "rowmenu" (dict "List" $list "Collection" $coll "ID" .ID)}}</td>
                </tr>
                {{else}}
                <tr><td colspan="6" class="px-4 py-8 text-center text-gray-500">No routes found.</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{template "pager" .List}}
</div>
{{end}}`,

	"schedules": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="flex justify-between items-center mb-6">
        <h1 class="text-2xl font-semibold text-gray-900">Schedules</h1>
        <a href="/owner/schedules/new" class="px-4 py-2 text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">Add Schedule</a>
    </div>
    {{template "filters" (dict "List" .List "StatusFilter" true)}}
    <div class="bg-white shadow overflow-visible sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Bus</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Route</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Operator</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Price</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Departs</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Arrives</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Status</th>
                    <th class="px-4 py-3"></th>
                </tr>
            </thead>
            <tbody class="divide-y divide-gray-200">
                {{$list := .List}}{{$coll := .Collection}}{{$sib := .Siblings}}
                {{range .Items}}
                <tr>
                    <td class="px-4 py-3 text-sm font-medium text-gray-900">{{$sib.BusName .BusID}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{$sib.RouteLabel .RouteID}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{$sib.OperatorName .OperatorID}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">&#8377;{{money .Price}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.StartTime}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.EndTime}}</td>
                    <td class="px-4 py-3 text-sm"><span class="px-2 py-0.5 rounded-full text-xs {{activeBadge .IsActive}}">{{.Status}}</span></td>
                    <td class="px-4 py-3 text-right">{{template "rowmenu" (dict "List" $list "Collection" $coll "ID" .ID)}}</td>
                </tr>
                {{else}}
                <tr><td colspan="8" class="px-4 py-8 text-center text-gray-500">No schedules found.</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{template "pager" .List}}
</div>
{{end}}`,

	"bookings": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Bookings</h1>
    {{template "filters" (dict "List" .List "StatusFilter" false)}}
    <div class="bg-white shadow overflow-hidden sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Passenger</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Phone</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Pickup</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Drop</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Seats</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Amount</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Payment</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Booked</th>
                </tr>
            </thead>
            <tbody class="divide-y divide-gray-200">
                {{range .Items}}
                <tr>
                    <td class="px-4 py-3 text-sm font-medium text-gray-900">{{.Name}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.Phone}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.PickupStop}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.DropStop}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{len .SeatsBooked}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">&#8377;{{money .TotalAmount}}</td>
                    <td class="px-4 py-3 text-sm"><span class="px-2 py-0.5 rounded-full text-xs {{activeBadge .IsConfirmed}}">{{.Status}}</span></td>
                    <td class="px-4 py-3 text-sm text-gray-500" title="{{formatTime .CreatedAt}}">{{ago .CreatedAt}}</td>
                </tr>
                {{else}}
                <tr><td colspan="8" class="px-4 py-8 text-center text-gray-500">No bookings found.</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{template "pager" .List}}
</div>
{{end}}`,

	"prompt": `{{define "content"}}
<div class="max-w-lg mx-auto px-4 py-6 sm:px-0">
    <div class="bg-white shadow rounded-lg p-6">
        <h1 class="text-xl font-semibold text-gray-900 mb-4">{{.Prompt.Question.Title}}</h1>
        <form method="POST">
            <input type="hidden" name="return" value="{{.Return}}">
            <label for="value" class="block text-sm font-medium text-gray-700">{{.Prompt.Question.Label}}</label>
            {{if eq .Prompt.Input "select"}}
            <select id="value" name="value" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
                {{$v := .Value}}
                {{range .Prompt.Question.Choices}}
                <option value="{{.Value}}" {{if eq .Value $v}}selected{{end}}>{{.Label}}</option>
                {{end}}
            </select>
            {{else if eq .Prompt.Input "number"}}
            <input id="value" name="value" type="number" step="any" value="{{.Value}}" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
            {{else if eq .Prompt.Input "time"}}
            <input id="value" name="value" type="time" value="{{.Value}}" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
            {{else}}
            <input id="value" name="value" type="text" value="{{.Value}}" placeholder="{{.Prompt.Question.Placeholder}}" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
            {{end}}
            {{if .Error}}<p class="mt-2 text-sm text-red-600">{{.Error}}</p>{{end}}
            <div class="mt-6 flex justify-end space-x-3">
                <button type="submit" name="action" value="cancel" class="px-4 py-2 text-sm rounded-md border border-gray-300 text-gray-700 bg-white">Cancel</button>
                <button type="submit" name="action" value="save" class="px-4 py-2 text-sm rounded-md text-white bg-indigo-600">Update</button>
            </div>
        </form>
    </div>
</div>
{{end}}`,

	"confirm": `{{define "content"}}
<div class="max-w-lg mx-auto px-4 py-6 sm:px-0">
    <div class="bg-white shadow rounded-lg p-6">
        <h1 class="text-xl font-semibold text-gray-900 mb-2">{{.Question.Title}}</h1>
        <p class="text-sm text-gray-600">{{.Question.Label}}</p>
        <form method="POST" class="mt-6 flex justify-end space-x-3">
            <input type="hidden" name="return" value="{{.Return}}">
            <button type="submit" name="action" value="cancel" class="px-4 py-2 text-sm rounded-md border border-gray-300 text-gray-700 bg-white">Cancel</button>
            <button type="submit" name="action" value="confirm" class="px-4 py-2 text-sm rounded-md text-white bg-red-600">Delete</button>
        </form>
    </div>
</div>
{{end}}`,

	"components/field": `{{define "field"}}
<div>
    <label for="{{.Name}}" class="block text-sm font-medium text-gray-700">{{.Label}}</label>
    <input id="{{.Name}}" name="{{.Name}}" type="{{or .Type "text"}}" value="{{index .Values .Name}}" {{if .Step}}step="{{.Step}}"{{end}}
           class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
    {{with index .Errors .Name}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
</div>
{{end}}`,

	"form_bus": `{{define "content"}}
<div class="max-w-xl mx-auto px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Add Bus</h1>
    <form method="POST" class="bg-white shadow rounded-lg p-6 space-y-4">
        {{template "field" (dict "Name" "name" "Label" "Bus name" "Values" .Values "Errors" .Errors)}}
        <div>
            <label for="type" class="block text-sm font-medium text-gray-700">Type</label>
            <select id="type" name="type" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
                <option value="">Select type</option>
                <option value="seater" {{if eq (index .Values "type") "seater"}}selected{{end}}>Seater</option>
                <option value="sleeper" {{if eq (index .Values "type") "sleeper"}}selected{{end}}>Sleeper</option>
            </select>
            {{with index .Errors "type"}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
        </div>
        <div>
            <label for="status" class="block text-sm font-medium text-gray-700">Status</label>
            <select id="status" name="status" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
                <option value="">Select status</option>
                <option value="Active" {{if eq (index .Values "status") "Active"}}selected{{end}}>Active</option>
                <option value="Inactive" {{if eq (index .Values "status") "Inactive"}}selected{{end}}>Inactive</option>
            </select>
            {{with index .Errors "status"}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
        </div>
        <div>
            <label for="ac" class="block text-sm font-medium text-gray-700">AC</label>
            <select id="ac" name="ac" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
                <option value="">Select</option>
                <option value="true" {{if eq (index .Values "ac") "true"}}selected{{end}}>Yes</option>
                <option value="false" {{if eq (index .Values "ac") "false"}}selected{{end}}>No</option>
            </select>
            {{with index .Errors "ac"}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
        </div>
        {{template "field" (dict "Name" "seatsTotal" "Label" "Total seats" "Type" "number" "Values" .Values "Errors" .Errors)}}
        <div class="flex justify-end space-x-3">
            <a href="/owner/buses" class="px-4 py-2 text-sm rounded-md border border-gray-300 text-gray-700 bg-white">Cancel</a>
            <button type="submit" class="px-4 py-2 text-sm rounded-md text-white bg-indigo-600">Add Bus</button>
        </div>
    </form>
</div>
{{end}}`,

	"form_route": `{{define "content"}}
<div class="max-w-xl mx-auto px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Add Route</h1>
    <form method="POST" class="bg-white shadow rounded-lg p-6 space-y-4">
        {{template "field" (dict "Name" "source" "Label" "Source" "Values" .Values "Errors" .Errors)}}
        {{template "field" (dict "Name" "destination" "Label" "Destination" "Values" .Values "Errors" .Errors)}}
        {{template "field" (dict "Name" "distance" "Label" "Distance (km)" "Type" "number" "Step" "any" "Values" .Values "Errors" .Errors)}}
        {{template "field" (dict "Name" "estimatedTime" "Label" "Estimated time (hours)" "Type" "number" "Step" "any" "Values" .Values "Errors" .Errors)}}
        {{template "field" (dict "Name" "pickupStops" "Label" "Pickup stops (comma separated)" "Values" .Values "Errors" .Errors)}}
        {{template "field" (dict "Name" "dropStops" "Label" "Drop stops (comma separated)" "Values" .Values "Errors" .Errors)}}
        <div class="flex justify-end space-x-3">
            <a href="/owner/routes" class="px-4 py-2 text-sm rounded-md border border-gray-300 text-gray-700 bg-white">Cancel</a>
            <button type="submit" class="px-4 py-2 text-sm rounded-md text-white bg-indigo-600">Add Route</button>
        </div>
    </form>
</div>
{{end}}`,

	"form_schedule": `{{define "content"}}
<div class="max-w-xl mx-auto px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Add Schedule</h1>
    <form method="POST" class="bg-white shadow rounded-lg p-6 space-y-4">
        {{$v := .Values}}
        <div>
            <label for="busId" class="block text-sm font-medium text-gray-700">Bus</label>
            <select id="busId" name="busId" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
                <option value="">Select bus</option>
                {{range .Siblings.Buses}}<option value="{{.ID}}" {{if eq (index $v "busId") .ID}}selected{{end}}>{{.Name}}</option>{{end}}
            </select>
            {{with index .Errors "busId"}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
        </div>
        <div>
            <label for="routeId" class="block text-sm font-medium text-gray-700">Route</label>
            <select id="routeId" name="routeId" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
                <option value="">Select route</option>
                {{range .Siblings.Routes}}<option value="{{.ID}}" {{if eq (index $v "routeId") .ID}}selected{{end}}>{{.Label}}</option>{{end}}
            </select>
            {{with index .Errors "routeId"}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
        </div>
        <div>
            <label for="operatorId" class="block text-sm font-medium text-gray-700">Operator</label>
            <select id="operatorId" name="operatorId" class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md text-sm">
                <option value="">Unassigned</option>
                {{range .Siblings.Operators}}<option value="{{.ID}}" {{if eq (index $v "operatorId") .ID}}selected{{end}}>{{.Name}}</option>{{end}}
            </select>
        </div>
        {{template "field" (dict "Name" "price" "Label" "Price" "Type" "number" "Step" "any" "Values" .Values "Errors" .Errors)}}
        {{template "field" (dict "Name" "startTime" "Label" "Start time" "Type" "time" "Values" .Values "Errors" .Errors)}}
        {{template "field" (dict "Name" "endTime" "Label" "End time" "Type" "time" "Values" .Values "Errors" .Errors)}}
        <div>
            <span class="block text-sm font-medium text-gray-700">Departure dates</span>
            {{range .Dates}}<input name="dates" type="date" value="{{.}}" class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">{{end}}
            <input name="dates" type="date" class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">
            <input name="dates" type="date" class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">
            <input name="dates" type="date" class="mt-1 px-3 py-2 border border-gray-300 rounded-md text-sm">
            {{with index .Errors "dates"}}<p class="mt-1 text-sm text-red-600">{{.}}</p>{{end}}
        </div>
        <div class="flex justify-end space-x-3">
            <a href="/owner/schedules" class="px-4 py-2 text-sm rounded-md border border-gray-300 text-gray-700 bg-white">Cancel</a>
            <button type="submit" class="px-4 py-2 text-sm rounded-md text-white bg-indigo-600">Add Schedule</button>
        </div>
    </form>
</div>
{{end}}`,

	"activity": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Activity</h1>
    <div class="bg-white shadow overflow-hidden sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">When</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Record</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Field</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Change</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Outcome</th>
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Message</th>
                </tr>
            </thead>
            <tbody class="divide-y divide-gray-200">
                {{range .Actions}}
                <tr>
                    <td class="px-4 py-3 text-sm text-gray-500" title="{{formatTime .CreatedAt}}">{{ago .CreatedAt}}</td>
                    <td class="px-4 py-3 text-sm text-gray-900">{{.Collection}}/{{.EntityID}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.Field}}</td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.OldValue}} &rarr; {{.NewValue}}</td>
                    <td class="px-4 py-3 text-sm"><span class="px-2 py-0.5 rounded-full text-xs {{outcomeClass .Outcome}}">{{.Outcome}}</span></td>
                    <td class="px-4 py-3 text-sm text-gray-500">{{.Message}}</td>
                </tr>
                {{else}}
                <tr><td colspan="6" class="px-4 py-8 text-center text-gray-500">No activity yet.</td></tr>
                {{end}}
            </tbody>
        </table>
    </div>
    {{if or .Pagination.HasPrev .Pagination.HasMore}}
    <div class="mt-4 flex justify-between">
        {{if .Pagination.HasPrev}}<a href="{{.Pagination.Prev}}" class="px-4 py-2 border border-gray-300 text-sm rounded-md">Previous</a>{{else}}<span></span>{{end}}
        <span class="text-sm text-gray-500">{{.Pagination.Total}} actions</span>
        {{if .Pagination.HasMore}}<a href="{{.Pagination.Next}}" class="px-4 py-2 border border-gray-300 text-sm rounded-md">Next</a>{{else}}<span></span>{{end}}
    </div>
    {{end}}
</div>
{{end}}`,
}
