package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

func NewPushCmd(a *app) *cobra.Command {
	var service, version string
	var skipConfirm bool
	c := &cobra.Command{
		Use:   "push",
		Short: "Publish a verified image to the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			service = stringFromEnv(cmd.Flags(), "service", "UNIVERSE_SERVICE", service)
			version = stringFromEnv(cmd.Flags(), "version", "UNIVERSE_VERSION", version)
			skipConfirm = boolFromEnv(cmd.Flags(), "skip-confirm", "UNIVERSE_SKIP_CONFIRM", skipConfirm)

			if service == "" {
				return &domain.ConfigurationError{Reason: "--service (or UNIVERSE_SERVICE) is required"}
			}
			version, err := a.resolveVersion(version)
			if err != nil {
				return err
			}

			if !skipConfirm {
				ok, err := confirm(cmd, fmt.Sprintf("Push %s to %s?", a.cfg.ImageRef(service, version), a.cfg.Namespace))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("push aborted by operator")
				}
			}

			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			run := a.newRun(version, serviceSubset(service))
			run.Push = true
			_, err = orch.Run(cmd.Context(), run, nil)
			return err
		},
	}
	c.Flags().StringVar(&service, "service", "", "Service to push; overrides UNIVERSE_SERVICE")
	c.Flags().StringVar(&version, "version", "", "Version tag; overrides UNIVERSE_VERSION")
	c.Flags().BoolVar(&skipConfirm, "skip-confirm", false, "Skip the confirmation prompt; overrides UNIVERSE_SKIP_CONFIRM")
	return c
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
