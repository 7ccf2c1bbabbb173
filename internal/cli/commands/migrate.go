package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tomrplummer/blue-eyes/internal/cli/ui"
	"github.com/tomrplummer/blue-eyes/internal/dbstate"
	"github.com/tomrplummer/blue-eyes/internal/project"
	"github.com/tomrplummer/blue-eyes/internal/shell"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long: `Run and inspect Sequel migrations.

Migrations live in db/migrations as <timestamp>_<name>.rb files and are
applied by Sequel's migrator, which records them in schema_migrations.
DATABASE_URL is read from the environment, then .env, then blue-eyes.yaml.

Available subcommands:
  up     - Apply all pending migrations (default)
  status - Show applied and pending migrations`,
		RunE: runMigrateUp,
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateStatusCommand())

	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  "Apply all pending migrations from db/migrations with `bundle exec sequel -m`",
		RunE:  runMigrateUp,
	}
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  "List the files in db/migrations and whether schema_migrations records them as applied",
		RunE:  runMigrateStatus,
	}
}

func databaseURL(ws *workspace) (string, error) {
	url := ws.config.DatabaseURL(ws.root)
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL not set\n\nExample:\n  echo 'DATABASE_URL=sqlite://app.db' >> .env")
	}
	return url, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	url, err := databaseURL(ws)
	if err != nil {
		return err
	}

	runner := &shell.Runner{Dir: ws.root, Logger: ws.logger}
	if verbose {
		runner.Stdout = cmd.OutOrStdout()
		runner.Stderr = cmd.ErrOrStderr()
	}
	bundler := shell.Bundler{Runner: runner}

	out := cmd.OutOrStdout()
	return ui.Step(out, "Running migrations", animate() && !verbose, noColor, func() error {
		_, err := bundler.Migrate(cmd.Context(), project.MigrationsDir, url)
		return err
	})
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	url, err := databaseURL(ws)
	if err != nil {
		return err
	}

	target, err := dbstate.ParseURL(url, ws.root)
	if err != nil {
		return err
	}
	db, err := dbstate.Open(target)
	if err != nil {
		return err
	}
	defer db.Close()

	ws.logger.Debug("reading migration state", zap.Stringer("dialect", target.Dialect))
	report, err := dbstate.Status(cmd.Context(), dbstate.NewReader(db, target.Dialect), ws.layout.Path(project.MigrationsDir))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(report.Migrations) == 0 && len(report.Orphaned) == 0 {
		fmt.Fprintln(out, ui.Info("No migrations found in "+project.MigrationsDir, noColor))
		return nil
	}

	table := ui.NewTable(out, []string{"STATUS", "VERSION", "FILE"}, &ui.TableOptions{NoColor: noColor})
	for _, m := range report.Migrations {
		status := "pending"
		if m.Applied {
			status = "applied"
		}
		table.AddRow(status, strconv.FormatInt(m.Version, 10), m.Filename)
	}
	for _, name := range report.Orphaned {
		table.AddRow("missing", "", name)
	}
	table.Render()

	fmt.Fprintln(out)
	pending := len(report.Pending())
	if pending == 0 {
		ui.WriteSuccess(out, "Database is up to date", noColor)
	} else {
		fmt.Fprintln(out, ui.Info(fmt.Sprintf("%d pending migration(s), run: blue-eyes migrate", pending), noColor))
	}

	return nil
}
