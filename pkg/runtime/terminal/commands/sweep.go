package commands

import (
	"fmt"

	"github.com/de-tools/work-reports/pkg/services/report"
	"github.com/spf13/cobra"
)

type SweepCmd struct {
	env    *Env
	prefix string
	delete bool
}

func NewSweepCmd(env *Env) *cobra.Command {
	sc := &SweepCmd{env: env}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Find stored reports that no history record points to",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.prefix, "prefix", "", "Only objects under this path prefix (default from config)")
	cmd.Flags().BoolVar(&sc.delete, "delete", false, "Delete the orphans found")

	return cmd
}

func (sc *SweepCmd) run(cmd *cobra.Command, _ []string) error {
	a := sc.env.App
	sweeper := a.Sweeper
	if sc.delete && !a.Config.Sweep.Delete {
		sweeper = report.NewSweeper(a.Objects, a.Artifacts, a.Metrics, true)
	}
	prefix := sc.prefix
	if prefix == "" {
		prefix = a.Config.Sweep.Prefix
	}

	result, err := sweeper.Sweep(cmd.Context(), prefix)
	if err != nil {
		return fmt.Errorf("failed to sweep: %w", err)
	}
	return sc.env.Reporter.HandleSweep(result)
}
