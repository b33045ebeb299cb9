// Package export renders list views as tables and CSV, and publishes CSV
// exports to S3-compatible object storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/me/busdesk/internal/listview"
	"github.com/me/busdesk/pkg/model"
)

// Table is a rendered list: a header row plus one row per record.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes t as RFC 4180 CSV. Cells a spreadsheet would evaluate as
// a formula are prefixed with a single quote.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, 0, len(t.Header))
	for _, r := range t.Rows {
		row = row[:0]
		for _, cell := range r {
			row = append(row, safeCell(cell))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func safeCell(s string) string {
	if s == "" || s == "-" || !strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return "'" + s
}

const dateLayout = "2006-01-02"

// Owners renders owners or operators.
func Owners(items []model.User) Table {
	t := Table{Header: []string{"ID", "Name", "Email", "Phone", "Status", "Joined"}}
	for _, u := range items {
		t.Rows = append(t.Rows, []string{u.ID, u.Name, u.Email, u.Phone, u.StatusLabel(), u.CreatedAt.Format(dateLayout)})
	}
	return t
}

// Buses renders a fleet.
func Buses(items []model.Bus) Table {
	t := Table{Header: []string{"ID", "Name", "Type", "AC", "Seats", "Status"}}
	for _, b := range items {
		ac := "Non-AC"
		if b.AC {
			ac = "AC"
		}
		t.Rows = append(t.Rows, []string{b.ID, b.Name, string(b.Type), ac, strconv.Itoa(b.SeatsTotal), string(b.Status)})
	}
	return t
}

// Routes renders routes with their stops.
func Routes(items []model.Route) Table {
	t := Table{Header: []string{"ID", "Route", "Distance (km)", "Time (h)", "Pickup", "Drop"}}
	for _, r := range items {
		t.Rows = append(t.Rows, []string{
			r.ID,
			r.Label(),
			formatNumber(r.Distance),
			formatNumber(r.EstimatedTime),
			model.JoinStops(r.PickupStops),
			model.JoinStops(r.DropStops),
		})
	}
	return t
}

// Siblings carries the collections schedules refer to by id.
type Siblings struct {
	Buses     []model.Bus   `json:"buses"`
	Routes    []model.Route `json:"routes"`
	Operators []model.User  `json:"operators"`
}

// BusName resolves a bus id, falling back to the id itself.
func (s Siblings) BusName(id string) string {
	if b, ok := listview.Lookup(s.Buses, id); ok {
		return b.Name
	}
	return id
}

// RouteLabel resolves a route id.
func (s Siblings) RouteLabel(id string) string {
	if r, ok := listview.Lookup(s.Routes, id); ok {
		return r.Label()
	}
	return id
}

// OperatorName resolves an operator id; unassigned schedules render "-".
func (s Siblings) OperatorName(id string) string {
	if id == "" {
		return "-"
	}
	if o, ok := listview.Lookup(s.Operators, id); ok {
		return o.Name
	}
	return id
}

// Schedules renders schedules with bus, route, and operator names resolved.
func Schedules(items []model.Schedule, sib Siblings) Table {
	t := Table{Header: []string{"ID", "Bus", "Route", "Operator", "Price", "Start", "End", "Status", "Active"}}
	for _, s := range items {
		active := "Yes"
		if !s.IsActive {
			active = "No"
		}
		t.Rows = append(t.Rows, []string{
			s.ID,
			sib.BusName(s.BusID),
			sib.RouteLabel(s.RouteID),
			sib.OperatorName(s.OperatorID),
			formatNumber(s.Price),
			s.StartTime,
			s.EndTime,
			s.Status,
			active,
		})
	}
	return t
}

// Bookings renders bookings with seat counts and amounts.
func Bookings(items []model.Booking) Table {
	t := Table{Header: []string{"ID", "Name", "Phone", "Pickup", "Drop", "Status", "Seats", "Amount"}}
	for _, b := range items {
		t.Rows = append(t.Rows, []string{
			b.RecordID(),
			b.Name,
			b.Phone,
			b.PickupStop,
			b.DropStop,
			b.Status,
			strconv.Itoa(len(b.SeatsBooked)),
			humanize.CommafWithDigits(b.TotalAmount, 2),
		})
	}
	return t
}

func formatNumber(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 2, 64), ".00")
}
