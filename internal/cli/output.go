package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/pkg/model"
)

// render writes records in the selected output format. json and yaml
// re-encode the server's data so keys match the API; table and csv use
// the same columns as exports.
func render(w io.Writer, format string, raw json.RawMessage, t export.Table) error {
	switch format {
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("format json: %w", err)
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	case "yaml":
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("format yaml: %w", err)
		}
		return enc.Close()
	case "csv":
		return export.WriteCSV(w, t)
	default:
		return writeTable(w, t)
	}
}

func writeTable(w io.Writer, t export.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Header, "\t")))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// tableFor renders one page of API records with the export columns.
// Schedule rows resolve bus, route, and operator names through sib.
func tableFor(coll model.Collection, raw json.RawMessage, sib export.Siblings) (export.Table, error) {
	switch coll {
	case model.CollectionOwners, model.CollectionOperators:
		return decodeTable(raw, export.Owners)
	case model.CollectionBuses:
		return decodeTable(raw, export.Buses)
	case model.CollectionRoutes:
		return decodeTable(raw, export.Routes)
	case model.CollectionSchedules:
		return decodeTable(raw, func(items []model.Schedule) export.Table {
			return export.Schedules(items, sib)
		})
	case model.CollectionBookings:
		return decodeTable(raw, export.Bookings)
	}
	return export.Table{}, fmt.Errorf("unknown collection %q", coll)
}

// lookups fetches the buses, routes, and operators schedule rows refer to.
func lookups(ctx context.Context, refresh bool) (export.Siblings, error) {
	path := "/api/v1/lookups"
	if refresh {
		path += "?refresh=1"
	}
	var sib export.Siblings
	resp, err := client.Get(ctx, path)
	if err != nil {
		return sib, fmt.Errorf("load schedule lookups: %w", describe(err))
	}
	if err := resp.decode(&sib); err != nil {
		return sib, err
	}
	return sib, nil
}

func decodeTable[T any](raw json.RawMessage, fn func([]T) export.Table) (export.Table, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return export.Table{}, fmt.Errorf("parse response: %w", err)
	}
	return fn(items), nil
}

// printNotices drains the notices the server queued for this terminal,
// skipping the one already shown.
func printNotices(cmd *cobra.Command, shown string) {
	resp, err := client.Get(cmd.Context(), "/api/v1/notices")
	if err != nil {
		logger.Debug("fetch notices", "error", err)
		return
	}
	var notices []model.Notice
	if err := resp.decode(&notices); err != nil {
		logger.Debug("parse notices", "error", err)
		return
	}
	for _, n := range notices {
		if n.Message == shown {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", n.Level, n.Message)
	}
}
