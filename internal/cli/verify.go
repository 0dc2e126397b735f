package cli

import (
	"github.com/spf13/cobra"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

func NewVerifyCmd(a *app) *cobra.Command {
	var service, version string
	var skipCleanup bool
	c := &cobra.Command{
		Use:   "verify",
		Short: "Prove a built image starts and serves traffic",
		RunE: func(cmd *cobra.Command, args []string) error {
			service = stringFromEnv(cmd.Flags(), "service", "UNIVERSE_SERVICE", service)
			version = stringFromEnv(cmd.Flags(), "version", "UNIVERSE_VERSION", version)
			skipCleanup = boolFromEnv(cmd.Flags(), "skip-cleanup", "UNIVERSE_SKIP_CLEANUP", skipCleanup)

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

			// Build stays skipped: verification targets the image a
			// previous run (or build command) left in the local store.
			run := a.newRun(version, serviceSubset(service))
			run.Verify = true
			run.KeepVerifyInstance = skipCleanup
			_, err = orch.Run(cmd.Context(), run, nil)
			return err
		},
	}
	c.Flags().StringVar(&service, "service", "", "Service to verify; overrides UNIVERSE_SERVICE")
	c.Flags().StringVar(&version, "version", "", "Version tag; overrides UNIVERSE_VERSION")
	c.Flags().BoolVar(&skipCleanup, "skip-cleanup", false, "Leave the ephemeral instance running; overrides UNIVERSE_SKIP_CLEANUP")
	return c
}
