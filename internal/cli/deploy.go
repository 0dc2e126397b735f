package cli

import (
	"github.com/spf13/cobra"
)

func NewDeployCmd(a *app) *cobra.Command {
	var service, version string
	var skipBuild, skipVerify, skipPush, dryRun bool
	c := &cobra.Command{
		Use:   "deploy",
		Short: "Build, verify, and push the catalog (or one service), fail-fast",
		RunE: func(cmd *cobra.Command, args []string) error {
			service = stringFromEnv(cmd.Flags(), "service", "UNIVERSE_SERVICE", service)
			version = stringFromEnv(cmd.Flags(), "version", "UNIVERSE_VERSION", version)
			skipBuild = boolFromEnv(cmd.Flags(), "skip-build", "UNIVERSE_SKIP_BUILD", skipBuild)
			skipVerify = boolFromEnv(cmd.Flags(), "skip-verify", "UNIVERSE_SKIP_VERIFY", skipVerify)
			skipPush = boolFromEnv(cmd.Flags(), "skip-push", "UNIVERSE_SKIP_PUSH", skipPush)
			dryRun = boolFromEnv(cmd.Flags(), "dry-run", "UNIVERSE_DRY_RUN", dryRun)

			version, err := a.resolveVersion(version)
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			run := a.newRun(version, serviceSubset(service))
			run.Build = !skipBuild
			run.Verify = !skipVerify
			run.Push = !skipPush
			run.DryRun = dryRun
			_, err = orch.Run(cmd.Context(), run, a.releaseArgs(version))
			return err
		},
	}
	c.Flags().StringVar(&service, "service", "", "Limit the run to one service; overrides UNIVERSE_SERVICE")
	c.Flags().StringVar(&version, "version", "", "Version tag; overrides UNIVERSE_VERSION")
	c.Flags().BoolVar(&skipBuild, "skip-build", false, "Skip the build stage; overrides UNIVERSE_SKIP_BUILD")
	c.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip the verify stage; overrides UNIVERSE_SKIP_VERIFY")
	c.Flags().BoolVar(&skipPush, "skip-push", false, "Skip the push stage; overrides UNIVERSE_SKIP_PUSH")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Plan only: no image is built, verify and push are disabled; overrides UNIVERSE_DRY_RUN")
	return c
}
