package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/pkg/model"
)

type summary struct {
	Owners        int     `json:"owners"`
	BlockedOwners int     `json:"blockedOwners"`
	Buses         int     `json:"buses"`
	Routes        int     `json:"routes"`
	Schedules     int     `json:"schedules"`
	Bookings      int     `json:"bookings"`
	Revenue       float64 `json:"revenue"`
	Complete      bool    `json:"complete"`
}

func newSummaryCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show dashboard counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/summary"
			if refresh {
				path += "?refresh=1"
			}
			resp, err := client.Get(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}
			var s summary
			if err := resp.decode(&s); err != nil {
				return err
			}

			t := export.Table{Header: []string{"Metric", "Value"}, Rows: [][]string{
				{"Owners", humanize.Comma(int64(s.Owners))},
				{"Blocked owners", humanize.Comma(int64(s.BlockedOwners))},
			}}
			if cfg.Owner != "" {
				t.Rows = append(t.Rows,
					[]string{"Buses", humanize.Comma(int64(s.Buses))},
					[]string{"Routes", humanize.Comma(int64(s.Routes))},
					[]string{"Schedules", humanize.Comma(int64(s.Schedules))},
					[]string{"Bookings", humanize.Comma(int64(s.Bookings))},
					[]string{"Revenue", humanize.CommafWithDigits(s.Revenue, 2)},
				)
			}
			out := cmd.OutOrStdout()
			if err := render(out, cfg.Output, resp.Data, t); err != nil {
				return err
			}
			if !s.Complete && cfg.Output == "table" {
				fmt.Fprintln(out, "\nSome counts could not be loaded; see the server log.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload from the booking API instead of the cache")
	return cmd
}

func newActivityCmd() *cobra.Command {
	var (
		coll   string
		entity string
		mine   bool
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the row-action journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := url.Values{}
			v.Set("limit", strconv.Itoa(limit))
			v.Set("offset", strconv.Itoa(offset))
			if coll != "" {
				v.Set("collection", coll)
			}
			if entity != "" {
				v.Set("entity", entity)
			}
			if cfg.Owner != "" {
				v.Set("owner", cfg.Owner)
			}
			if mine {
				v.Set("mine", "1")
			}
			resp, err := client.Get(cmd.Context(), withQuery("/api/v1/actions", v))
			if err != nil {
				return fmt.Errorf("activity: %w", describe(err))
			}
			var actions []model.ActionRecord
			if err := resp.decode(&actions); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Output == "table" && len(actions) == 0 {
				fmt.Fprintln(out, "No activity recorded.")
				return nil
			}
			t := export.Table{Header: []string{"When", "Collection", "ID", "Field", "Change", "Outcome", "Message"}}
			for _, a := range actions {
				change := a.NewValue
				if a.OldValue != "" {
					change = a.OldValue + " -> " + a.NewValue
				}
				t.Rows = append(t.Rows, []string{
					humanize.Time(a.CreatedAt),
					string(a.Collection),
					a.EntityID,
					a.Field,
					change,
					string(a.Outcome),
					a.Message,
				})
			}
			if err := render(out, cfg.Output, resp.Data, t); err != nil {
				return err
			}
			if cfg.Output == "table" && resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(actions), resp.Pagination.Total)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&coll, "collection", "", "Only actions on this collection")
	f.StringVar(&entity, "entity", "", "Only actions on this record id")
	f.BoolVar(&mine, "mine", false, "Only actions from this terminal")
	f.IntVar(&limit, "limit", model.DefaultListOptions().Limit, "Maximum rows")
	f.IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}

func newNoticesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notices",
		Short: "Show pending notices for this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printNotices(cmd, "")
			return nil
		},
	}
}
