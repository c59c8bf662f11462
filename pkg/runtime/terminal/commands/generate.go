package commands

import (
	"fmt"

	"github.com/de-tools/work-reports/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type GenerateCmd struct {
	env     *Env
	flags   reportFlags
	persist bool
	out     string
}

func NewGenerateCmd(env *Env) *cobra.Command {
	gc := &GenerateCmd{env: env}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a monthly work report PDF",
		Args:  cobra.NoArgs,
		RunE:  gc.run,
	}

	gc.flags.register(cmd)
	cmd.Flags().BoolVar(&gc.persist, "persist", false, "Upload the report and record it in the history")
	cmd.Flags().StringVarP(&gc.out, "out", "o", ".", "Output file or directory, - for stdout")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := gc.flags.request(gc.env.Now())
	if err != nil {
		return err
	}
	req.Persist = gc.persist
	sink := &export.FileSink{Fs: gc.env.Fs, Target: gc.out, Stdout: cmd.OutOrStdout()}
	req.Sink = sink

	result, err := gc.env.App.Reports.GenerateReport(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if sink.Written == "" {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", sink.Written, len(result.Artifact))
	if record := result.Delivery.Record; record != nil && record.StoragePath != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Stored as %s, report id %s\n", *record.StoragePath, record.ID)
	}
	return nil
}
