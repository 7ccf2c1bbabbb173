package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomrplummer/blue-eyes/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// Global flags
var (
	rootDir string
	verbose bool
	noColor bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blue-eyes",
		Short: "Sinatra application generator",
		Long: color.CyanString(`blue-eyes - Sinatra/Sequel/Haml application generator

Creates Sinatra applications and generates their resources:
  • Controllers with nested routes for belongs-to relations
  • Sequel models and migrations
  • Haml views and JSON APIs
  • A path registry the application reads its routes from`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "C", ".", "Project root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewDBCommand())
	rootCmd.AddCommand(NewTemplateCommand())
	rootCmd.AddCommand(NewRoutesCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the blue-eyes version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor)
			table.AddRow("blue-eyes version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		opts := ui.ClassifyError(err, noColor)
		opts.Suggestions = suggestionsOf(err)
		ui.WriteError(rootCmd.ErrOrStderr(), opts)
		return err
	}
	return nil
}
