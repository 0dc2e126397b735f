package cli

import (
	"github.com/spf13/cobra"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

func NewBuildCmd(a *app) *cobra.Command {
	var service, version string
	var dryRun bool
	c := &cobra.Command{
		Use:   "build",
		Short: "Build a service image into the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			service = stringFromEnv(cmd.Flags(), "service", "UNIVERSE_SERVICE", service)
			version = stringFromEnv(cmd.Flags(), "version", "UNIVERSE_VERSION", version)
			dryRun = boolFromEnv(cmd.Flags(), "dry-run", "UNIVERSE_DRY_RUN", dryRun)

			if service == "" {
				return &domain.ConfigurationError{Reason: "--service (or UNIVERSE_SERVICE) is required"}
			}
			version, err := a.resolveVersion(version)
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			run := a.newRun(version, serviceSubset(service))
			run.Build = true
			run.DryRun = dryRun
			_, err = orch.Run(cmd.Context(), run, a.releaseArgs(version))
			return err
		},
	}
	c.Flags().StringVar(&service, "service", "", "Service to build; overrides UNIVERSE_SERVICE")
	c.Flags().StringVar(&version, "version", "", "Version tag; overrides UNIVERSE_VERSION")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Report the build plan without building; overrides UNIVERSE_DRY_RUN")
	return c
}
