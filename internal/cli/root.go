package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BAWES-Universe/workadventure-universe/internal/adapters/docker"
	"github.com/BAWES-Universe/workadventure-universe/internal/config"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/pipeline"
	"github.com/BAWES-Universe/workadventure-universe/internal/gitmeta"
)

// app carries the state shared by all subcommands: resolved configuration
// and the logger, both initialized once in the root's PersistentPreRunE.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	cfgPath   string
	namespace string
	verbose   bool
}

// Execute runs the CLI. Interrupts cancel the command context, which lets
// the verifier reclaim any running ephemeral instance on the way out.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "universe",
		Short:         "Build, verify, and publish universe service images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "Pipeline config file (YAML); overrides UNIVERSE_CONFIG")
	pf.StringVar(&a.namespace, "namespace", "", "Registry namespace; overrides UNIVERSE_NAMESPACE")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(NewBuildCmd(a))
	root.AddCommand(NewVerifyCmd(a))
	root.AddCommand(NewPushCmd(a))
	root.AddCommand(NewDeployCmd(a))
	return root
}

func (a *app) init() error {
	level := zerolog.InfoLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	a.log = zerolog.New(output).Level(level).With().Timestamp().Str("app", "universe").Logger()

	path := a.cfgPath
	if path == "" {
		path = os.Getenv("UNIVERSE_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.namespace != "" {
		cfg.Namespace = a.namespace
	}
	a.cfg = cfg
	return nil
}

// orchestrator wires the pipeline against the real Docker engine.
func (a *app) orchestrator() (*pipeline.Orchestrator, error) {
	engine, err := docker.NewAdapter(a.cfg.RegistryAuth)
	if err != nil {
		return nil, err
	}
	registry := pipeline.DefaultRegistry()
	builder := pipeline.NewBuilder(engine, a.cfg, a.log)
	verifier := pipeline.NewVerifier(engine, a.cfg, a.log)
	pusher := pipeline.NewPusher(engine, a.cfg, a.log)
	return pipeline.NewOrchestrator(registry, builder, verifier, pusher, a.log), nil
}

func (a *app) newRun(version string, services []string) domain.PipelineRun {
	return domain.PipelineRun{
		ID:       uuid.NewString()[:8],
		Services: services,
		Version:  version,
	}
}

// resolveVersion falls back from the explicit value to UNIVERSE_VERSION and
// finally to the short HEAD hash of the checkout the pipeline runs in.
func (a *app) resolveVersion(version string) (string, error) {
	if version == "" {
		version = os.Getenv("UNIVERSE_VERSION")
	}
	if version == "" {
		if head, err := gitmeta.Resolve(a.cfg.ContextDir); err == nil {
			version = head.ShortSHA
			a.log.Info().Str("version", version).Msg("version tag taken from git HEAD")
		}
	}
	if version == "" {
		return "", &domain.ConfigurationError{Reason: "version tag required (--version, UNIVERSE_VERSION, or run inside a git checkout)"}
	}
	return version, nil
}

// releaseArgs returns the release-tracking build parameters, or nil when
// the checkout cannot be read. The builder forwards them only to services
// that track releases.
func (a *app) releaseArgs(version string) map[string]string {
	head, err := gitmeta.Resolve(a.cfg.ContextDir)
	if err != nil {
		a.log.Debug().Err(err).Msg("no git metadata available, skipping release args")
		return nil
	}
	return head.ReleaseArgs(version)
}

func serviceSubset(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}
