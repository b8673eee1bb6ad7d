package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"visiondb/config"
	"visiondb/database"
	"visiondb/logging"
	"visiondb/queries"
	"visiondb/scanner"
	"visiondb/utils"
)

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create the schema, load every JSON document and print the reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reset := a.settings.Reset
			if cmd.Flags().Changed("reset") {
				reset, _ = cmd.Flags().GetBool("reset")
			}
			return withSignals(cmd, func(ctx context.Context) error {
				out := cmd.OutOrStdout()
				db, err := a.openDatabase(ctx, out, reset)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := a.load(ctx, db, out); err != nil {
					return err
				}
				return queries.Run(ctx, db, out, queries.Queries, queries.Options{ShowSQL: a.settings.ShowSQL})
			})
		},
	}
	cmd.Flags().Bool("reset", true, "drop and recreate every table before loading")
	return cmd
}

func newSchemaCommand(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the schema, or check an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			db, err := a.openDatabase(ctx, out, reset)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := database.GetLoadStats(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Schema ready in %s\n", a.settings.DBPath)
			printStats(out, stats)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop and recreate every table")
	return cmd
}

func newLoadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load every JSON document into an existing database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSignals(cmd, func(ctx context.Context) error {
				out := cmd.OutOrStdout()
				db, err := a.openDatabase(ctx, out, false)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := a.load(ctx, db, out); err != nil {
					return err
				}
				stats, err := database.GetLoadStats(ctx, db)
				if err != nil {
					return err
				}
				printStats(out, stats)
				return nil
			})
		},
	}
}

func newQueryCommand(a *app) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the report queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			numbers, err := utils.ParseQueryNumbers(only)
			if err != nil {
				return fmt.Errorf("%w: --only: %w", config.ErrInvalidConfig, err)
			}
			selected, err := queries.Select(numbers)
			if err != nil {
				return fmt.Errorf("%w: --only: %w", config.ErrInvalidConfig, err)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			db, err := a.openDatabase(ctx, out, false)
			if err != nil {
				return err
			}
			defer db.Close()

			return queries.Run(ctx, db, out, selected, queries.Options{ShowSQL: a.settings.ShowSQL})
		},
	}
	cmd.Flags().StringVar(&only, "only", "", "comma separated query numbers, e.g. 3,5")
	cmd.Flags().Bool("show-sql", false, "print the SQL text of each query")
	_ = a.v.BindPFlag(config.KeyShowSQL, cmd.Flags().Lookup("show-sql"))
	return cmd
}

// load runs the folder scanner against db
func (a *app) load(ctx context.Context, db *sql.DB, out io.Writer) error {
	summary, err := scanner.ScanAndLoadFolder(ctx, db, scanner.ScanOptions{
		JSONDir:   a.settings.JSONDir,
		DebugMode: a.settings.Debug,
		Output:    out,
	})
	if err != nil {
		logging.LogError("load stopped", "error", err)
		return err
	}
	logging.LogInfo("load finished", "loaded", summary.Loaded, "failed", summary.Failed)
	return nil
}

func printStats(out io.Writer, stats *database.LoadStats) {
	for _, t := range stats.Tables {
		fmt.Fprintf(out, "    %s\t%d\n", t.Table, t.Rows)
	}
}
