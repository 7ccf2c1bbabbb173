package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomrplummer/blue-eyes/internal/cli/ui"
	"github.com/tomrplummer/blue-eyes/internal/generator"
	"github.com/tomrplummer/blue-eyes/internal/registry"
)

// NewRoutesCommand creates the routes command
func NewRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List registered resources and their paths",
		Long: `List the resources recorded in the path registry with the URL prefix
each generated controller is mounted at.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.close()

			r, err := registry.Load(ws.layout.RegistryPath())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if r.Len() == 0 {
				fmt.Fprintln(out, ui.Info("No resources registered yet, run: blue-eyes generate controller <name>", noColor))
				return nil
			}

			table := ui.NewTable(out, []string{"NAME", "AS", "BELONGS TO", "PATH"}, &ui.TableOptions{NoColor: noColor})
			for _, e := range r.Entries() {
				table.AddRow(e.Name, e.Alias, e.BelongsTo, generator.RoutePrefix(r, e))
			}
			table.Render()
			return nil
		},
	}
}
