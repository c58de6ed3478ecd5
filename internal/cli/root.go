package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"website/internal/config"
	"website/internal/logging"
)

type rootOptions struct {
	siteFile string
	logLevel string
}

// NewRootCommand builds the website command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "website",
		Short:        "Resolve and serve website pages from installed apps",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.siteFile, "site", "", "site file listing installed apps (overrides WEBSITE_SITE_FILE)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides WEBSITE_LOG_LEVEL)")

	cmd.AddCommand(
		newServeCommand(opts),
		newRoutesCommand(opts),
		newResolveCommand(opts),
		newClearCacheCommand(opts),
		newMigrateCommand(opts),
	)
	return cmd
}

func (o *rootOptions) config() config.Config {
	cfg := config.Load()
	if o.siteFile != "" {
		cfg.SiteFile = o.siteFile
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg
}

// open loads configuration and builds the app. The caller closes it and
// syncs the logger.
func (o *rootOptions) open(ctx context.Context) (*App, error) {
	cfg := o.config()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	app, err := Build(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return app, nil
}

func withApp(o *rootOptions, run func(cmd *cobra.Command, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := o.open(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				app.Logger.Warn("close app", zap.Error(err))
			}
			_ = app.Logger.Sync()
		}()
		return run(cmd, app, args)
	}
}
