package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/tabkit/logger"
)

type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "tabkit",
		Short:        "Load tabular data from CSV, JSON and YAML sources",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: search ./config, . and the user config dir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration and starts the application for cmd.
func (o *rootOptions) setup(cmd *cobra.Command) (*Config, *app, error) {
	cfg, err := loadConfig(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, nil, err
		}
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}

// closeApp stops a with a context that outlives the command's, so a
// cancelled run still shuts down cleanly.
func closeApp(cmd *cobra.Command, a *app) {
	ctx := context.WithoutCancel(cmd.Context())
	if err := a.close(ctx); err != nil {
		a.log.Warn("shutdown failed", map[string]interface{}{logger.FieldError: err.Error()})
	}
}
