package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BAWES-Universe/workadventure-universe/internal/config"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/ports"
)

// Pusher publishes a locally present, verified image to the registry.
type Pusher struct {
	engine ports.ImageBuilder
	cfg    *config.Config
	log    zerolog.Logger
}

func NewPusher(engine ports.ImageBuilder, cfg *config.Config, log zerolog.Logger) *Pusher {
	return &Pusher{engine: engine, cfg: cfg, log: log}
}

// Push publishes the versioned reference for spec. When the version is not
// the floating tag, it additionally re-tags and republishes under the
// floating tag; failure of that secondary step is a warning only, because
// the primary reference already landed.
func (p *Pusher) Push(ctx context.Context, spec domain.ServiceSpec, version string) (domain.PushOutcome, error) {
	ref := p.cfg.ImageRef(spec.ImageName, version)
	outcome := domain.PushOutcome{Service: spec.Name, ImageRef: ref}

	exists, err := p.engine.ImageExists(ctx, ref)
	if err != nil {
		return outcome, &domain.PushError{Service: spec.Name, ImageRef: ref, Detail: "failed to check local image store", Err: err}
	}
	if !exists {
		return outcome, &domain.PushError{Service: spec.Name, ImageRef: ref, Detail: "image not present locally, build it first"}
	}

	p.log.Info().Str("service", spec.Name).Str("image", ref).Msg("pushing image")
	if err := p.engine.PushImage(ctx, ref); err != nil {
		return outcome, &domain.PushError{Service: spec.Name, ImageRef: ref, Detail: "registry rejected push", Err: err}
	}
	outcome.Success = true

	if version == p.cfg.FloatingTag {
		outcome.FloatingTagPushed = true
		return outcome, nil
	}

	floating := p.cfg.ImageRef(spec.ImageName, p.cfg.FloatingTag)
	if err := p.republish(ctx, ref, floating); err != nil {
		// Best effort: the versioned reference landed, so the service's
		// verdict stays success.
		p.log.Warn().Str("service", spec.Name).Str("image", floating).Err(err).Msg("floating-tag republish failed")
		return outcome, nil
	}
	outcome.FloatingTagPushed = true
	p.log.Info().Str("service", spec.Name).Str("image", floating).Msg("floating tag republished")
	return outcome, nil
}

func (p *Pusher) republish(ctx context.Context, ref, floating string) error {
	if err := p.engine.TagImage(ctx, ref, floating); err != nil {
		return err
	}
	return p.engine.PushImage(ctx, floating)
}
