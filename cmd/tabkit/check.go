package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/tabkit/observability"
	"github.com/kbukum/tabkit/version"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Start the configured components and report their health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, a, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			health := observability.NewServiceHealth(cfg.Name, version.Get().Short(), a.registry.HealthAll(cmd.Context()))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(health); err != nil {
				return err
			}
			if !health.Healthy() {
				return fmt.Errorf("%s is %s", cfg.Name, health.Status)
			}
			return nil
		},
	}
}
