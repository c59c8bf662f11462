package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type ImportCmd struct {
	env *Env
}

func NewImportCmd(env *Env) *cobra.Command {
	ic := &ImportCmd{env: env}
	return &cobra.Command{
		Use:   "import <fixtures.yaml>",
		Short: "Load profiles, companies, activities, templates and work entries from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  ic.run,
	}
}

func (ic *ImportCmd) run(cmd *cobra.Command, args []string) error {
	summary, err := ic.env.App.Importer.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"Imported %d profiles, %d companies, %d activities, %d templates, %d report configs, %d work entries\n",
		summary.Profiles, summary.Companies, summary.Activities,
		summary.Templates, summary.ReportConfigs, summary.WorkEntries)
	return nil
}
