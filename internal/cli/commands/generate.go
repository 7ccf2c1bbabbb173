package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tomrplummer/blue-eyes/internal/cli/ui"
	"github.com/tomrplummer/blue-eyes/internal/generator"
	"github.com/tomrplummer/blue-eyes/internal/inflect"
	"github.com/tomrplummer/blue-eyes/internal/registry"
	"github.com/tomrplummer/blue-eyes/internal/resource"
	"github.com/tomrplummer/blue-eyes/internal/templates"
)

// generateOptions are the flags shared by every generate subcommand
type generateOptions struct {
	fields      []string
	alias       string
	belongsTo   string
	force       bool
	dryRun      bool
	interactive bool
}

var kindDescriptions = map[resource.Kind]string{
	resource.Controller: "Generate a controller and register its routes",
	resource.Model:      "Generate a Sequel model",
	resource.Migration:  "Generate a create-table migration",
	resource.Api:        "Generate a model, migration and JSON controller",
	resource.Scaffold:   "Generate a model, migration, controller and views",
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate <kind> <name>",
		Aliases: []string{"g"},
		Short:   "Generate resources",
		Long: `Generate controllers, models, migrations, APIs and scaffolds.

Available generators:
  controller - Controller, registered in config.ru and the path registry
  model      - Sequel model
  migration  - Create-table migration (requires --fields)
  api        - Model, migration and JSON controller under /api
  scaffold   - Model, migration, controller and Haml views

Examples:
  blue-eyes generate scaffold post --fields "string:title text:body"
  blue-eyes g controller comment --belongs-to post
  blue-eyes g api article --alias news --fields string:headline
  blue-eyes g scaffold post --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			// Reached only for names that match no subcommand
			_, err := resource.ParseKind(args[0])
			return withSuggestions(err, ui.Suggest(args[0], kindNames(), 3))
		},
	}

	for _, kind := range resource.Kinds() {
		cmd.AddCommand(newGenerateKindCommand(kind))
	}

	return cmd
}

func kindNames() []string {
	names := make([]string, 0, len(resource.Kinds()))
	for _, kind := range resource.Kinds() {
		names = append(names, kind.String())
	}
	return names
}

func newGenerateKindCommand(kind resource.Kind) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   kind.String() + " [name]",
		Short: kindDescriptions[kind],
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, kind, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.fields, "fields", "f", nil, `Columns as type:name pairs, e.g. "string:title text:body"`)
	cmd.Flags().StringVar(&opts.alias, "alias", "", "URL segment to mount the resource at")
	cmd.Flags().StringVar(&opts.belongsTo, "belongs-to", "", "Parent resource to nest under")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be generated without writing")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the resource details")

	return cmd
}

func runGenerate(cmd *cobra.Command, kind resource.Kind, args []string, opts *generateOptions) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	var name string
	if len(args) > 0 {
		name = args[0]
	}
	if opts.interactive {
		if err := promptGenerate(ws, kind, &name, opts); err != nil {
			return err
		}
	}
	if name == "" {
		return fmt.Errorf("%w: resource name required\n\nUsage: blue-eyes generate %s <name>", resource.ErrParse, kind)
	}

	spec, err := resource.New(name, kind, resource.Options{
		Fields:    opts.fields,
		Alias:     opts.alias,
		BelongsTo: opts.belongsTo,
	})
	if err != nil {
		return err
	}

	tmplRegistry, err := templates.NewBuiltinRegistry()
	if err != nil {
		return err
	}
	overrides, err := tmplRegistry.LoadDir(filepath.Join(ws.root, ws.config.Paths.Templates))
	if err != nil {
		return err
	}
	if overrides > 0 {
		ws.logger.Debug("template overrides loaded", zap.Int("count", overrides))
	}

	gen := generator.New(ws.layout, templates.NewEngine(tmplRegistry), generator.Options{
		Overwrite: opts.force || ws.config.Generate.Overwrite,
		DryRun:    opts.dryRun,
		Marker:    ws.config.Router.Marker,
		Logger:    ws.logger,
	})

	result, err := gen.Generate(spec)
	if err != nil {
		if errors.Is(err, generator.ErrMissingRelation) {
			return withSuggestions(err, relationSuggestions(ws, spec.BelongsTo))
		}
		return err
	}

	printResult(cmd.OutOrStdout(), ws, result)
	return nil
}

// relationSuggestions lists registered names close to a missing parent
func relationSuggestions(ws *workspace, parent string) []string {
	r, err := registry.Load(ws.layout.RegistryPath())
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range r.Entries() {
		names = append(names, e.Name)
	}
	return ui.Suggest(inflect.Derive(parent, inflect.PathSegment), names, 3)
}

func printResult(w io.Writer, ws *workspace, result *generator.Result) {
	for _, a := range result.Artifacts {
		ui.WriteAction(w, a.Action.String(), ws.layout.Rel(a.Path), noColor)
	}
	if result.Entry != nil {
		action := "identical"
		if result.RegistryChange != registry.Unchanged {
			action = "update"
		}
		ui.WriteAction(w, action, ws.layout.Rel(ws.layout.RegistryPath()), noColor)
	}

	fmt.Fprintln(w)
	if result.DryRun {
		fmt.Fprintln(w, ui.Info("Dry run: nothing was written", noColor))
		return
	}
	ui.WriteSuccess(w, fmt.Sprintf("Generated %d files", countWritten(result)), noColor)
}

func countWritten(result *generator.Result) int {
	n := 0
	for _, a := range result.Artifacts {
		if a.Action != generator.Skip {
			n++
		}
	}
	return n
}

// promptGenerate asks for whatever the flags left out
func promptGenerate(ws *workspace, kind resource.Kind, name *string, opts *generateOptions) error {
	if *name == "" {
		prompt := &survey.Input{
			Message: "Resource name (singular, snake_case):",
		}
		if err := survey.AskOne(prompt, name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if len(opts.fields) == 0 && kind != resource.Controller {
		var fields string
		prompt := &survey.Input{
			Message: "Fields (type:name, space separated):",
			Help:    "e.g. string:title text:body boolean:published",
		}
		if err := survey.AskOne(prompt, &fields); err != nil {
			return err
		}
		if strings.TrimSpace(fields) != "" {
			opts.fields = []string{fields}
		}
	}

	if kind == resource.Model || kind == resource.Migration {
		return nil
	}

	if opts.alias == "" {
		prompt := &survey.Input{
			Message: "URL alias (leave empty to use the name):",
		}
		if err := survey.AskOne(prompt, &opts.alias); err != nil {
			return err
		}
	}

	if opts.belongsTo == "" {
		r, err := registry.Load(ws.layout.RegistryPath())
		if err != nil {
			return err
		}
		if r.Len() == 0 {
			return nil
		}

		const none = "(none)"
		options := []string{none}
		for _, e := range r.Entries() {
			options = append(options, e.Name)
		}
		var parent string
		prompt := &survey.Select{
			Message: "Belongs to:",
			Options: options,
			Default: none,
		}
		if err := survey.AskOne(prompt, &parent); err != nil {
			return err
		}
		if parent != none {
			opts.belongsTo = parent
		}
	}

	return nil
}
