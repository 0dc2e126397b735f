package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/BAWES-Universe/workadventure-universe/internal/config"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/ports"
)

// releaseArgKeys are the release-tracking build parameters. They are
// forwarded only to services marked ReleaseTracking; everything else in the
// extra-parameter map goes to every build.
var releaseArgKeys = map[string]bool{
	"RELEASE_VERSION": true,
	"RELEASE_SHA":     true,
	"RELEASE_BRANCH":  true,
}

// Builder produces a local image from a service spec and a version tag.
type Builder struct {
	engine ports.ImageBuilder
	cfg    *config.Config
	log    zerolog.Logger
}

func NewBuilder(engine ports.ImageBuilder, cfg *config.Config, log zerolog.Logger) *Builder {
	return &Builder{engine: engine, cfg: cfg, log: log}
}

// Plan computes the image reference and the exact build-arg set for a
// service without touching the engine. The real build uses these same
// values, which is what keeps dry-run trustworthy.
func (b *Builder) Plan(spec domain.ServiceSpec, version string, extraArgs map[string]string) (string, map[string]string) {
	ref := b.cfg.ImageRef(spec.ImageName, version)
	args := make(map[string]string, len(extraArgs))
	for k, v := range extraArgs {
		if releaseArgKeys[k] && !spec.ReleaseTracking {
			continue
		}
		args[k] = v
	}
	return ref, args
}

// Build materializes the image for spec under the computed reference.
// In dry-run mode it reports the identical plan without building anything.
func (b *Builder) Build(ctx context.Context, spec domain.ServiceSpec, version string, extraArgs map[string]string, dryRun bool) (domain.BuildOutcome, error) {
	ref, args := b.Plan(spec, version, extraArgs)
	outcome := domain.BuildOutcome{Service: spec.Name, ImageRef: ref, BuildArgs: args}

	dockerfile := filepath.Join(b.cfg.ContextDir, spec.Dockerfile)
	if _, err := os.Stat(dockerfile); err != nil {
		outcome.Detail = fmt.Sprintf("image source descriptor %s not found", spec.Dockerfile)
		return outcome, &domain.BuildError{Service: spec.Name, Detail: outcome.Detail, Err: err}
	}

	if dryRun {
		b.log.Info().
			Str("service", spec.Name).
			Str("image", ref).
			Interface("build_args", args).
			Msg("dry-run: would build image")
		outcome.Success = true
		outcome.Detail = "dry-run"
		return outcome, nil
	}

	b.log.Info().Str("service", spec.Name).Str("image", ref).Msg("building image")
	if err := b.engine.BuildImage(ctx, b.cfg.ContextDir, spec.Dockerfile, ref, args); err != nil {
		outcome.Detail = err.Error()
		return outcome, &domain.BuildError{Service: spec.Name, Detail: "engine build failed", Err: err}
	}

	outcome.Success = true
	b.log.Info().Str("service", spec.Name).Str("image", ref).Msg("image built")
	return outcome, nil
}
