// Package cli implements the visiondb command line.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"visiondb/config"
	"visiondb/database"
	"visiondb/logging"
	"visiondb/signalhandler"
)

const longDescription = `visiondb loads a folder of Cloud Vision annotation documents (JSON) into a
SQLite database and prints a fixed set of report queries.

Exit Codes:
  0   - Success
  1   - General error
  3   - Panic or unexpected system error
  10  - Invalid configuration
  11  - Database schema is incompatible
  12  - Database consistency failure while loading
  130 - Interrupted`

// app carries the state shared by the commands of one invocation
type app struct {
	v          *viper.Viper
	configFile string
	settings   *config.Settings
}

// NewRootCommand builds the visiondb command tree
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:               "visiondb",
		Short:             "Load Cloud Vision JSON documents into SQLite and report on them",
		Long:              longDescription,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./"+config.DefaultConfigFile+" if present)")
	pf.String("data-dir", "", "data directory holding json/ and sqlite.db")
	pf.String("json-dir", "", "folder of JSON documents (default <data-dir>/json)")
	pf.String("db", "", "SQLite database file (default <data-dir>/sqlite.db)")
	pf.Bool("debug", false, "write a debug log")
	pf.String("log-file", "", "debug log file")

	// Flags override the config file and the environment once set
	_ = a.v.BindPFlag(config.KeyDataDir, pf.Lookup("data-dir"))
	_ = a.v.BindPFlag(config.KeyJSONDir, pf.Lookup("json-dir"))
	_ = a.v.BindPFlag(config.KeyDBPath, pf.Lookup("db"))
	_ = a.v.BindPFlag(config.KeyDebug, pf.Lookup("debug"))
	_ = a.v.BindPFlag(config.KeyLogFile, pf.Lookup("log-file"))

	root.AddCommand(
		newRunCommand(a),
		newSchemaCommand(a),
		newLoadCommand(a),
		newQueryCommand(a),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	root := NewRootCommand()
	err := executeCommand(root)
	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// executeCommand runs root and closes the debug log whether or not the
// command failed
func executeCommand(root *cobra.Command) error {
	defer logging.CloseLogger()
	return root.Execute()
}

// setup resolves the settings and starts the debug log
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.settings = settings

	if settings.Debug {
		if err := logging.SetupLogger(settings.LogFile, true); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Debug mode enabled. Logging to: %s\n", settings.LogFile)
		}
	}
	logging.DebugLog("settings resolved",
		"command", cmd.Name(),
		"json_dir", settings.JSONDir,
		"db", settings.DBPath,
		"reset", settings.Reset)
	return nil
}

// withSignals runs fn with a context cancelled on SIGINT or SIGTERM
func withSignals(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, stop := signalhandler.SetupHandler(cmd.Context())
	defer stop()
	return fn(ctx)
}

// openDatabase opens the configured database and makes sure the schema exists
func (a *app) openDatabase(ctx context.Context, out io.Writer, reset bool) (*sql.DB, error) {
	if reset {
		fmt.Fprintf(out, "WARNING: resetting %s drops every table and all loaded data.\n", a.settings.DBPath)
	}
	return database.InitDatabase(ctx, a.settings.DBPath, reset)
}
