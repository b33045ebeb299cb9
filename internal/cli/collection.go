package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/pkg/model"
)

func newCollectionCmd(coll model.Collection, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(coll),
		Short: short,
	}
	cmd.AddCommand(newListCmd(coll), newBrowseCmd(coll))
	switch coll {
	case model.CollectionOwners:
		cmd.AddCommand(newToggleCmd())
	case model.CollectionBuses, model.CollectionRoutes, model.CollectionSchedules:
		cmd.AddCommand(newEditCmd(coll), newDeleteCmd(coll))
	}
	return cmd
}

// queryFlags are the list filters shared by list and export.
type queryFlags struct {
	search  string
	status  string
	date    string
	page    int
	refresh bool
}

func (q *queryFlags) bind(fs *pflag.FlagSet, paged bool) {
	fs.StringVarP(&q.search, "search", "s", "", "Case-insensitive text search")
	fs.StringVar(&q.status, "status", "", "Status filter (active, blocked)")
	fs.StringVar(&q.date, "date", "", "Created within (last_7_days, last_30_days, last_90_days)")
	fs.BoolVar(&q.refresh, "refresh", false, "Reload from the booking API instead of the cache")
	if paged {
		fs.IntVarP(&q.page, "page", "p", 1, "Page number")
	}
}

func (q *queryFlags) values() url.Values {
	v := url.Values{}
	if q.search != "" {
		v.Set("search", q.search)
	}
	if q.status != "" {
		v.Set("status", q.status)
	}
	if q.date != "" {
		v.Set("date", q.date)
	}
	if q.page > 1 {
		v.Set("page", strconv.Itoa(q.page))
	}
	if q.refresh {
		v.Set("refresh", "1")
	}
	return v
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func newListCmd(coll model.Collection) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + string(coll),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get(cmd.Context(), withQuery("/api/v1/views/"+string(coll), q.values()))
			if err != nil {
				return fmt.Errorf("list %s: %w", coll, describe(err))
			}
			var sib export.Siblings
			if coll == model.CollectionSchedules && (cfg.Output == "table" || cfg.Output == "csv") {
				if sib, err = lookups(cmd.Context(), false); err != nil {
					return err
				}
			}
			t, err := tableFor(coll, resp.Data, sib)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Output == "table" && len(t.Rows) == 0 {
				fmt.Fprintf(out, "No %s found.\n", coll)
				return nil
			}
			if err := render(out, cfg.Output, resp.Data, t); err != nil {
				return err
			}
			if cfg.Output == "table" && resp.Pagination != nil {
				fmt.Fprintf(out, "\n%s (page %d of %d)\n", resp.Pagination.RangeLabel, resp.Pagination.Page, resp.Pagination.TotalPages)
			}
			return nil
		},
	}
	q.bind(cmd.Flags(), true)
	return cmd
}

// fieldPrompt mirrors the server's field prompt description.
type fieldPrompt struct {
	Field   string `json:"field"`
	Title   string `json:"title"`
	Label   string `json:"label"`
	Current string `json:"current"`
	Choices []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	} `json:"choices"`
}

func (fp fieldPrompt) question() rowaction.Question {
	q := rowaction.Question{Title: fp.Title, Label: fp.Label, Current: fp.Current}
	for _, c := range fp.Choices {
		q.Choices = append(q.Choices, rowaction.Choice{Value: c.Value, Label: c.Label})
	}
	return q
}

// actionResult mirrors the server's row-action response.
type actionResult struct {
	Result  model.ActionOutcome `json:"result"`
	Level   model.NoticeLevel   `json:"level"`
	Message string              `json:"message"`
	Value   string              `json:"value"`
}

func newEditCmd(coll model.Collection) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <field> [value]",
		Short: "Edit one field of a " + coll.Singular(),
		Long: "Edit one field of a " + coll.Singular() + ". Without a value the current one is\n" +
			"offered for editing; Ctrl-C cancels without contacting the server.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, field := args[0], args[1]
			out := cmd.OutOrStdout()

			resp, err := client.Get(ctx, recordPath(coll, id)+"/fields/"+url.PathEscape(field))
			if err != nil {
				return fmt.Errorf("edit %s: %w", coll.Singular(), describe(err))
			}
			var fp fieldPrompt
			if err := resp.decode(&fp); err != nil {
				return err
			}

			var p rowaction.Prompter
			if len(args) == 3 {
				p = rowaction.Answered{Value: args[2], OK: true}
			} else {
				tp := newPrompter(out)
				defer tp.Close()
				p = tp
			}
			ans, err := p.Prompt(ctx, fp.question())
			if err != nil {
				return err
			}
			if !ans.OK || strings.TrimSpace(ans.Value) == fp.Current {
				fmt.Fprintln(out, "No changes were made.")
				return nil
			}

			resp, err = client.Patch(ctx, recordPath(coll, id), map[string]string{
				"field": fp.Field,
				"value": ans.Value,
			})
			if err != nil {
				return fmt.Errorf("edit %s: %w", coll.Singular(), describe(err))
			}
			var res actionResult
			if err := resp.decode(&res); err != nil {
				return err
			}
			fmt.Fprintln(out, res.Message)
			printNotices(cmd, res.Message)
			return nil
		},
	}
}

func newDeleteCmd(coll model.Collection) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + coll.Singular(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			out := cmd.OutOrStdout()

			if _, err := client.Get(ctx, recordPath(coll, id)); err != nil {
				return fmt.Errorf("delete %s: %w", coll.Singular(), describe(err))
			}

			var c rowaction.Confirmer = rowaction.Confirmed(true)
			if !yes {
				tp := newPrompter(out)
				defer tp.Close()
				c = tp
			}
			ok, err := c.Confirm(ctx, console.DeleteQuestion(coll))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "No changes were made.")
				return nil
			}

			resp, err := client.Delete(ctx, recordPath(coll, id))
			if err != nil {
				return fmt.Errorf("delete %s: %w", coll.Singular(), describe(err))
			}
			var res actionResult
			if err := resp.decode(&res); err != nil {
				return err
			}
			fmt.Fprintln(out, res.Message)
			printNotices(cmd, res.Message)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Block or unblock an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post(cmd.Context(), recordPath(model.CollectionOwners, args[0])+"/toggle", nil)
			if err != nil {
				return fmt.Errorf("toggle owner: %w", describe(err))
			}
			var res actionResult
			if err := resp.decode(&res); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			printNotices(cmd, res.Message)
			return nil
		},
	}
}

// describe expands validation details of an API error.
func describe(err error) error {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Details) == 0 {
		return err
	}
	var b strings.Builder
	b.WriteString(apiErr.Message)
	for _, d := range apiErr.Details {
		b.WriteString("\n  ")
		if d.Field != "" {
			b.WriteString(d.Field + ": ")
		}
		b.WriteString(d.Message)
	}
	return errors.New(b.String())
}
