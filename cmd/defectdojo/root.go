package main

import (
	"fmt"
	"time"

	"github.com/dojokit/go-defectdojo"
	"github.com/dojokit/go-defectdojo/config"
	"github.com/dojokit/go-defectdojo/internal/codec"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type rootOptions struct {
	envFile string
	verbose bool
	timeout time.Duration

	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:          "defectdojo",
		Short:        "Query and manage DefectDojo resources.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file with DEFECTDOJO_* settings (environment variables win)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and pages to stderr")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP request timeout")

	cmd.AddCommand(
		newGetCommand(opts),
		newSearchCommand(opts),
		newFindCommand(opts),
		newDeleteCommand(opts),
	)

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func (o *rootOptions) client() (*defectdojo.Client, error) {
	var envOpts []config.EnvOption
	if o.envFile != "" {
		envOpts = append(envOpts, config.WithEnvFile(o.envFile))
	}

	return defectdojo.NewClientFromEnvWith(envOpts,
		defectdojo.WithLogger(o.logger),
		defectdojo.WithTimeout(o.timeout),
		defectdojo.WithUserAgent("defectdojo-cli/"+Version),
	)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := codec.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
