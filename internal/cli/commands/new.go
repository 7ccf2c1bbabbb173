package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomrplummer/blue-eyes/internal/bootstrap"
	"github.com/tomrplummer/blue-eyes/internal/cli/ui"
)

var (
	newInteractive bool
	newDatabase    string
	newSkipInstall bool
	newTailwind    string
)

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new Sinatra application",
		Long: `Create a new Sinatra application with Sequel, Haml and Tailwind CSS.

The application gets a users table, login/logout controllers, a path
registry and a .env holding DATABASE_URL and generated secrets.
Unless --skip-install is given, gems are installed with bundler, the
first migration runs and the Tailwind CSS standalone CLI is downloaded.

Examples:
  blue-eyes new blog
  blue-eyes new shop --db postgres
  blue-eyes new blog --skip-install
  blue-eyes new --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNew,
	}

	cmd.Flags().BoolVarP(&newInteractive, "interactive", "i", false, "Interactive mode with prompts")
	cmd.Flags().StringVar(&newDatabase, "db", "sqlite", "Database: sqlite or postgres")
	cmd.Flags().BoolVar(&newSkipInstall, "skip-install", false, "Only write files; skip bundler, migrations and Tailwind")
	cmd.Flags().StringVar(&newTailwind, "tailwind-version", bootstrap.DefaultTailwindVersion, "Tailwind CSS release to download")

	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	infoColor := color.New(color.FgCyan)
	promptColor := color.New(color.FgYellow)

	var projectName string
	if len(args) > 0 {
		projectName = args[0]
	}

	if projectName == "" || newInteractive {
		if d, err := bootstrap.ParseDatabase(newDatabase); err == nil {
			newDatabase = string(d)
		}
		if err := promptNew(&projectName); err != nil {
			return err
		}
	}

	database, err := bootstrap.ParseDatabase(newDatabase)
	if err != nil {
		return err
	}

	p, err := bootstrap.New(bootstrap.Options{
		Name:            projectName,
		Dir:             rootDir,
		Database:        database,
		SkipInstall:     newSkipInstall,
		TailwindVersion: newTailwind,
		Logger:          newLogger(cmd),
	})
	if err != nil {
		return err
	}

	infoColor.Fprintf(out, "Creating %s in %s\n\n", projectName, p.Root())

	for _, step := range p.Steps() {
		step := step
		if err := ui.Step(out, step.Name, animate(), noColor, func() error {
			return step.Run(cmd.Context())
		}); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	ui.WriteSuccess(out, fmt.Sprintf("Created %s", projectName), noColor)
	fmt.Fprintln(out)

	rel := p.Root()
	if wd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(wd, p.Root()); err == nil {
			rel = r
		}
	}

	promptColor.Fprintln(out, "Get started:")
	fmt.Fprintf(out, "  cd %s\n", rel)
	if newSkipInstall {
		fmt.Fprintln(out, "  bundle install")
		fmt.Fprintln(out, "  blue-eyes migrate")
	}
	fmt.Fprintln(out, "  blue-eyes generate scaffold post --fields \"string:title text:body\"")
	fmt.Fprintln(out, "  bin/dev")
	fmt.Fprintln(out)

	return nil
}

func promptNew(projectName *string) error {
	questions := []*survey.Question{
		{
			Name: "name",
			Prompt: &survey.Input{
				Message: "Project name:",
				Default: *projectName,
			},
			Validate: func(ans interface{}) error {
				s, _ := ans.(string)
				return bootstrap.ValidateName(s)
			},
		},
		{
			Name: "database",
			Prompt: &survey.Select{
				Message: "Database:",
				Options: []string{string(bootstrap.SQLite), string(bootstrap.Postgres)},
				Default: newDatabase,
			},
		},
		{
			Name: "install",
			Prompt: &survey.Confirm{
				Message: "Install gems and download Tailwind now?",
				Default: !newSkipInstall,
			},
		},
	}

	answers := struct {
		Name     string `survey:"name"`
		Database string `survey:"database"`
		Install  bool   `survey:"install"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	*projectName = answers.Name
	newDatabase = answers.Database
	newSkipInstall = !answers.Install
	return nil
}
