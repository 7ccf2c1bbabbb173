package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomrplummer/blue-eyes/internal/cli/ui"
	"github.com/tomrplummer/blue-eyes/internal/templates"
	"github.com/tomrplummer/blue-eyes/internal/utils"
)

var (
	templateEjectForce bool
)

// NewTemplateCommand creates the template command
func NewTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage artifact templates",
		Long: `Manage the templates generate renders.

Built-in templates can be copied into the project (paths.templates,
.blue-eyes/templates by default) and edited there; a <id>.tmpl file in
that directory replaces the built-in template with the same id.

Examples:
  blue-eyes template list
  blue-eyes template eject model controller
  blue-eyes template validate`,
	}

	cmd.AddCommand(NewTemplateListCommand())
	cmd.AddCommand(NewTemplateEjectCommand())
	cmd.AddCommand(NewTemplateValidateCommand())

	return cmd
}

// projectTemplates loads the built-in templates with the project's overrides
func projectTemplates(ws *workspace) (*templates.Registry, map[string]bool, error) {
	r, err := templates.NewBuiltinRegistry()
	if err != nil {
		return nil, nil, err
	}

	dir := filepath.Join(ws.root, ws.config.Paths.Templates)
	overridden := make(map[string]bool)
	files, err := utils.FindFiles(dir, ".tmpl")
	if err != nil {
		return nil, nil, err
	}
	for _, file := range files {
		overridden[strings.TrimSuffix(filepath.Base(file), ".tmpl")] = true
	}

	if _, err := r.LoadDir(dir); err != nil {
		return nil, nil, err
	}
	return r, overridden, nil
}

// NewTemplateListCommand creates the template list command
func NewTemplateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List artifact templates",
		Long:  `Display every artifact template and whether the project overrides it.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.close()

			r, overridden, err := projectTemplates(ws)
			if err != nil {
				return err
			}

			table := ui.NewTable(cmd.OutOrStdout(), []string{"ID", "SOURCE"}, &ui.TableOptions{NoColor: noColor})
			for _, id := range r.List() {
				source := "built-in"
				if overridden[id] {
					source = filepath.Join(ws.config.Paths.Templates, id+".tmpl")
				}
				table.AddRow(id, source)
			}
			table.Render()
			return nil
		},
	}
}

// NewTemplateEjectCommand creates the template eject command
func NewTemplateEjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eject [template-id...]",
		Short: "Copy built-in templates into the project for editing",
		Long:  `Write the built-in source of the named templates (all when none are named) into the project's template directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.close()

			builtin, err := templates.NewBuiltinRegistry()
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				ids = builtin.List()
			}

			out := cmd.OutOrStdout()
			dir := filepath.Join(ws.root, ws.config.Paths.Templates)
			for _, id := range ids {
				if !builtin.Exists(id) {
					return withSuggestions(fmt.Errorf("%w: %s", templates.ErrTemplateNotFound, id), ui.Suggest(id, builtin.List(), 3))
				}
			}

			for _, id := range ids {
				source, err := builtin.Get(id)
				if err != nil {
					return err
				}

				path := filepath.Join(dir, id+".tmpl")
				exists, err := utils.FileExists(path)
				if err != nil {
					return err
				}
				if exists && !templateEjectForce {
					ui.WriteAction(out, "skip", ws.layout.Rel(path), noColor)
					continue
				}

				if err := utils.WriteFileAtomic(path, []byte(source), 0644); err != nil {
					return err
				}
				action := "create"
				if exists {
					action = "overwrite"
				}
				ui.WriteAction(out, action, ws.layout.Rel(path), noColor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&templateEjectForce, "force", false, "Overwrite templates already in the project")

	return cmd
}

// NewTemplateValidateCommand creates the template validate command
func NewTemplateValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every template parses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.close()

			r, overridden, err := projectTemplates(ws)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			engine := templates.NewEngine(r)
			var failed error
			for _, id := range r.List() {
				if err := engine.Check(id); err != nil {
					ui.WriteAction(out, "invalid", id, noColor)
					if failed == nil {
						failed = err
					}
					continue
				}
				if overridden[id] {
					ui.WriteAction(out, "ok", id, noColor)
				}
			}
			if failed != nil {
				return failed
			}

			ui.WriteSuccess(out, fmt.Sprintf("%d templates are valid", len(r.List())), noColor)
			return nil
		},
	}
}
