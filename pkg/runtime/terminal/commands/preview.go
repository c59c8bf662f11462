package commands

import (
	"fmt"

	"github.com/de-tools/work-reports/pkg/document"
	"github.com/spf13/cobra"
)

type PreviewCmd struct {
	env    *Env
	flags  reportFlags
	asJSON bool
}

func NewPreviewCmd(env *Env) *cobra.Command {
	pc := &PreviewCmd{env: env}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the report data, or the merged document with --json, without rendering",
		Args:  cobra.NoArgs,
		RunE:  pc.run,
	}

	pc.flags.register(cmd)
	cmd.Flags().BoolVar(&pc.asJSON, "json", false, "Print the merged document definition")

	return cmd
}

func (pc *PreviewCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := pc.flags.request(pc.env.Now())
	if err != nil {
		return err
	}
	preview, err := pc.env.App.Reports.Preview(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to preview report: %w", err)
	}

	if !pc.asJSON {
		return pc.env.Reporter.HandleModel(preview.Model)
	}
	out, err := document.MarshalIndent(preview.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
