package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/busdesk/internal/config"
	"github.com/me/busdesk/internal/logging"
	"github.com/me/busdesk/pkg/model"
)

var (
	flagConfig    string
	flagServer    string
	flagOwner     string
	flagOutput    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg    config.CLIConfig
	logger *slog.Logger
	client *Client
)

// clientID names this terminal to the server. It is stable per host so a
// later command sees notices left by an earlier one.
func clientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return "cli-" + host
}

// NewRootCmd creates the root cobra command for the busdesk CLI.
func NewRootCmd() *cobra.Command {
	defaults := config.DefaultCLIConfig()

	root := &cobra.Command{
		Use:   "busdesk",
		Short: "Busdesk: manage owners, fleets, routes and schedules",
		Long:  "Busdesk talks to a busdesk server to list, filter, edit and export bus-booking records.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(""); err != nil {
				return err
			}
			f, err := config.LoadFile(flagConfig, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			cfg = config.ApplyCLIEnv(f.ApplyCLI(config.DefaultCLIConfig()), os.Getenv)

			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.Server = flagServer
			}
			if flags.Changed("owner") {
				cfg.Owner = flagOwner
			}
			if flags.Changed("output") {
				cfg.Output = flagOutput
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = flagLogLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = flagLogFormat
			}
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			switch cfg.Output {
			case "table", "json", "yaml", "csv":
			default:
				return fmt.Errorf("unknown output format %q (table, json, yaml, csv)", cfg.Output)
			}

			logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
			client = NewClient(cfg.Server, clientID(), cfg.Owner, logger)
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", config.DefaultPath(), "Config file (JSONC)")
	pf.StringVar(&flagServer, "server", defaults.Server, "Busdesk server URL (or BUSDESK_SERVER env)")
	pf.StringVar(&flagOwner, "owner", "", "Owner id for fleet tables (or BUSDESK_OWNER env)")
	pf.StringVarP(&flagOutput, "output", "o", defaults.Output, "Output format (table, json, yaml, csv)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", defaults.LogFormat, "Log format (text, json, tint)")

	root.AddCommand(
		newCollectionCmd(model.CollectionOwners, "Platform owners (admin)"),
		newCollectionCmd(model.CollectionBuses, "Buses of the selected owner"),
		newCollectionCmd(model.CollectionRoutes, "Routes of the selected owner"),
		newCollectionCmd(model.CollectionSchedules, "Schedules of the selected owner"),
		newCollectionCmd(model.CollectionBookings, "Bookings of the selected owner"),
		newExportCmd(),
		newSummaryCmd(),
		newActivityCmd(),
		newNoticesCmd(),
		newConfigCmd(),
	)

	return root
}
