// Command signalctl inspects model artifacts, scores inputs locally and
// probes a running prediction service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/sugarsignal/internal/adapters/artifact"
	app "github.com/okian/sugarsignal/internal/app"
	"github.com/okian/sugarsignal/internal/config"
	"github.com/okian/sugarsignal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// cli carries settings shared by every subcommand.
type cli struct {
	verbose bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "signalctl",
		Short:         "Operator tool for the sugarsignal prediction service",
		SilenceUsage:  true,
		SilenceErrors: true,

		// Runs before this command and any subcommands
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if c.verbose {
				_ = logger.SetLevelString("debug")
			} else {
				_ = logger.SetLevelString("warn")
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newInspectCmd(c),
		newScoreCmd(c),
		newProbeCmd(c),
		newConvertCmd(c),
	)
	return root
}

func (c *cli) log() logger.Logger {
	return logger.Named("signalctl")
}

// loadService opens path (or the configured model_path) and loads the model.
func (c *cli) loadService(ctx context.Context, path, checksum string) (*app.Service, error) {
	if path == "" {
		path = c.cfg.ModelPath
	}
	if checksum == "" {
		checksum = c.cfg.ModelChecksum
	}
	src, err := artifact.Open(ctx, path, artifact.WithS3Config(artifact.S3Config{
		Region:    c.cfg.S3.Region,
		Endpoint:  c.cfg.S3.Endpoint,
		AccessKey: c.cfg.S3.AccessKey,
		SecretKey: c.cfg.S3.SecretKey,
	}))
	if err != nil {
		return nil, err
	}
	svc := app.New(
		app.WithSource(src),
		app.WithChecksum(checksum),
		app.WithCacheSize(0),
		app.WithLogger(c.log()),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
