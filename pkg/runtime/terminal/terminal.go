package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/de-tools/work-reports/pkg/app"
	"github.com/de-tools/work-reports/pkg/runtime/terminal/commands"
	"github.com/de-tools/work-reports/pkg/runtime/terminal/export"
	"github.com/de-tools/work-reports/pkg/services/config"
	"github.com/de-tools/work-reports/pkg/services/identity"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ActorEnv names the caller when --actor is not given.
const ActorEnv = config.EnvPrefix + "_ACTOR"

// CLI represents the command-line interface
type CLI struct {
	env       *commands.Env
	output    io.Writer
	errOutput io.Writer
	cfgPath   string
	actor     string
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output    io.Writer
	ErrOutput io.Writer
	// Fs receives generated files. Defaults to the OS filesystem.
	Fs  afero.Fs
	Now func() time.Time
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cli := &CLI{
		env:       &commands.Env{Fs: opts.Fs, Now: opts.Now},
		output:    opts.Output,
		errOutput: opts.ErrOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// Run executes the command line args under ctx.
func (cli *CLI) Run(ctx context.Context, args []string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "work-reports",
		Short:             "Monthly work report generator",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if cli.env.App == nil {
				return nil
			}
			return cli.env.App.Close()
		},
	}
	cmd.SetOut(cli.output)
	cmd.SetErr(cli.errOutput)

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "", "Path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&cli.actor, "actor", os.Getenv(ActorEnv),
		"Actor id of the caller (default $"+ActorEnv+")")

	cmd.AddCommand(commands.NewGenerateCmd(cli.env))
	cmd.AddCommand(commands.NewPreviewCmd(cli.env))
	cmd.AddCommand(commands.NewReportsCmd(cli.env))
	cmd.AddCommand(commands.NewSweepCmd(cli.env))
	cmd.AddCommand(commands.NewImportCmd(cli.env))

	return cmd
}

// setup loads the configuration and builds the pipeline before a subcommand runs.
func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}

	cfg, err := config.LoadConfig(cli.cfgPath)
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cli.errOutput, cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithContext(ctx)
	if cli.actor != "" {
		ctx = identity.WithPrincipal(ctx, cli.actor)
	}

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	cli.env.App = a
	cli.env.Reporter = export.NewReporter(cli.output, a.Formatter)

	cmd.SetContext(ctx)
	return nil
}
