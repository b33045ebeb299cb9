package cli

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/pkg/model"
)

func newExportCmd() *cobra.Command {
	var (
		q       queryFlags
		file    string
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Export every filtered row of a collection",
		Long: "Export every row of a collection that passes the filters, ignoring pagination.\n" +
			"Schedules are exported with bus, route and operator names resolved.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := model.ParseCollection(args[0])
			if err != nil {
				return err
			}
			path := withQuery("/api/v1/exports/"+string(coll), q.values())
			out := cmd.OutOrStdout()

			if publish {
				resp, err := client.Post(cmd.Context(), path, nil)
				if err != nil {
					return fmt.Errorf("publish %s: %w", coll, describe(err))
				}
				var res struct {
					Key string `json:"key"`
				}
				if err := resp.decode(&res); err != nil {
					return err
				}
				fmt.Fprintf(out, "Published %s to %s\n", coll, res.Key)
				return nil
			}

			resp, err := client.Get(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("export %s: %w", coll, describe(err))
			}
			var t export.Table
			if err := resp.decode(&t); err != nil {
				return err
			}

			if file == "" {
				format := cfg.Output
				if format == "table" {
					format = "csv"
				}
				return render(out, format, resp.Data, t)
			}

			var buf bytes.Buffer
			if err := export.WriteCSV(&buf, t); err != nil {
				return err
			}
			if err := atomic.WriteFile(file, &buf); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
			fmt.Fprintf(out, "Wrote %d %s to %s\n", len(t.Rows), coll, file)
			return nil
		},
	}
	q.bind(cmd.Flags(), false)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Write CSV to this file instead of stdout")
	cmd.Flags().BoolVar(&publish, "publish", false, "Upload the CSV to the server's export bucket")
	return cmd
}
