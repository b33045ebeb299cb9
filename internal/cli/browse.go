package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/internal/listview"
	"github.com/me/busdesk/pkg/model"
)

const browseHelp = `Commands:
  n, p          next / previous page
  g <page>      go to page
  /<text>       search (empty clears)
  s <status>    status filter: active, blocked, all
  d <days>      created within 7, 30 or 90 days; all clears
  c             clear all filters
  r             reload from the server
  q             quit
`

func newBrowseCmd(coll model.Collection) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through " + string(coll) + " interactively",
		Long: "Load " + string(coll) + " once and filter and page them locally. Filter changes\n" +
			"return to the first page and never contact the server; r reloads.\n\n" + browseHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch coll {
			case model.CollectionOwners:
				return browse(cmd, coll, refresh, listview.UserFields, export.Owners)
			case model.CollectionBuses:
				return browse(cmd, coll, refresh, listview.BusFields, export.Buses)
			case model.CollectionRoutes:
				return browse(cmd, coll, refresh, listview.RouteFields, export.Routes)
			case model.CollectionSchedules:
				sib, err := lookups(cmd.Context(), refresh)
				if err != nil {
					return err
				}
				return browse(cmd, coll, refresh, listview.ScheduleFields, func(items []model.Schedule) export.Table {
					return export.Schedules(items, sib)
				})
			case model.CollectionBookings:
				return browse(cmd, coll, refresh, listview.BookingFields, export.Bookings)
			}
			return fmt.Errorf("cannot browse %s", coll)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload from the booking API instead of the server cache")
	return cmd
}

func fetchAll[T any](ctx context.Context, coll model.Collection, refresh bool) ([]T, error) {
	path := "/api/v1/" + string(coll)
	if refresh {
		path += "?refresh=1"
	}
	resp, err := client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", coll, describe(err))
	}
	var items []T
	if err := resp.decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func browse[T listview.Record](cmd *cobra.Command, coll model.Collection, refresh bool, fields listview.Fields[T], table func([]T) export.Table) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	items, err := fetchAll[T](ctx, coll, refresh)
	if err != nil {
		return err
	}
	ctl := listview.NewController(fields)
	ctl.Replace(items)

	tp := newPrompter(out)
	defer tp.Close()

	for {
		if err := showPage(out, ctl, table); err != nil {
			return err
		}
		line, ok, err := tp.ReadLine(string(coll) + "> ")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		fc := ctl.Criteria()
		if rest, found := strings.CutPrefix(line, "/"); found {
			fc.SearchText = strings.TrimSpace(rest)
			ctl.SetCriteria(fc)
			continue
		}
		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "":
		case "q", "quit":
			return nil
		case "n", "next":
			ctl.Navigate(ctl.Page() + 1)
		case "p", "prev":
			ctl.Navigate(ctl.Page() - 1)
		case "g", "page":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(out, "usage: g <page>")
				continue
			}
			ctl.Navigate(n)
		case "s", "status":
			fc.StatusFilter = model.ParseStatusFilter(arg)
			ctl.SetCriteria(fc)
		case "d", "date":
			fc.DateFilter = parseDays(arg)
			ctl.SetCriteria(fc)
		case "c", "clear":
			ctl.SetCriteria(model.FilterCriteria{})
		case "r", "refresh":
			items, err := fetchAll[T](ctx, coll, true)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			ctl.Replace(items)
			ctl.Navigate(ctl.Page())
		case "h", "help", "?":
			fmt.Fprint(out, browseHelp)
		default:
			fmt.Fprintf(out, "unknown command %q\n%s", name, browseHelp)
		}
	}
}

func showPage[T listview.Record](out io.Writer, ctl *listview.Controller[T], table func([]T) export.Table) error {
	v := ctl.View()
	if len(v.Items) == 0 {
		fmt.Fprintln(out, "No matching records.")
	} else if err := writeTable(out, table(v.Items)); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (page %d of %d)%s\n", v.RangeLabel, v.Page, max(1, v.TotalPages), criteriaSuffix(ctl.Criteria()))
	return nil
}

// parseDays accepts 7, 30, 90 or a full date filter token.
func parseDays(s string) model.DateFilter {
	switch s {
	case "7":
		return model.DateLast7Days
	case "30":
		return model.DateLast30Days
	case "90":
		return model.DateLast90Days
	}
	if _, ok := model.DateFilter(s).Days(); ok {
		return model.DateFilter(s)
	}
	return model.DateAny
}

func criteriaSuffix(fc model.FilterCriteria) string {
	if fc.IsZero() {
		return ""
	}
	var parts []string
	if fc.SearchText != "" {
		parts = append(parts, fmt.Sprintf("search=%q", fc.SearchText))
	}
	if fc.StatusFilter != model.StatusAny {
		parts = append(parts, "status="+string(fc.StatusFilter))
	}
	if fc.DateFilter != model.DateAny {
		parts = append(parts, "date="+string(fc.DateFilter))
	}
	return " [" + strings.Join(parts, " ") + "]"
}
