package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"github.com/BAWES-Universe/workadventure-universe/internal/config"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

func TestPushMissingLocalImage(t *testing.T) {
	engine := newFakeEngine()
	p := NewPusher(engine, config.Default(), zerolog.Nop())

	_, err := p.Push(context.Background(), backSpec(), "v1.2.3")
	var pushErr *domain.PushError
	assert.Assert(t, errors.As(err, &pushErr))
	assert.Equal(t, len(engine.pushed), 0)
}

func TestPushRepublishesUnderFloatingTag(t *testing.T) {
	engine := newFakeEngine()
	cfg := config.Default()
	engine.images[cfg.ImageRef("back", "v1.2.3")] = true
	p := NewPusher(engine, cfg, zerolog.Nop())

	outcome, err := p.Push(context.Background(), backSpec(), "v1.2.3")
	assert.NilError(t, err)
	assert.Assert(t, outcome.Success)
	assert.Assert(t, outcome.FloatingTagPushed)

	assert.DeepEqual(t, engine.pushed, []string{
		"bawesuniverse/back-universe:v1.2.3",
		"bawesuniverse/back-universe:latest",
	})
	assert.Equal(t, len(engine.tags), 1)
	assert.Equal(t, engine.tags[0].target, "bawesuniverse/back-universe:latest")
}

func TestFloatingTagRepublishFailureIsAdvisory(t *testing.T) {
	engine := newFakeEngine()
	cfg := config.Default()
	ref := cfg.ImageRef("back", "v1.2.3")
	engine.images[ref] = true
	engine.pushErr[cfg.ImageRef("back", "latest")] = errors.New("quota exceeded")
	p := NewPusher(engine, cfg, zerolog.Nop())

	outcome, err := p.Push(context.Background(), backSpec(), "v1.2.3")
	// The versioned reference landed, so the verdict stays success.
	assert.NilError(t, err)
	assert.Assert(t, outcome.Success)
	assert.Assert(t, !outcome.FloatingTagPushed)
	assert.DeepEqual(t, engine.pushed, []string{ref})
}

func TestPushOfFloatingTagItselfSkipsRepublish(t *testing.T) {
	engine := newFakeEngine()
	cfg := config.Default()
	engine.images[cfg.ImageRef("back", "latest")] = true
	p := NewPusher(engine, cfg, zerolog.Nop())

	outcome, err := p.Push(context.Background(), backSpec(), "latest")
	assert.NilError(t, err)
	assert.Assert(t, outcome.Success)
	assert.Assert(t, outcome.FloatingTagPushed)
	assert.Equal(t, len(engine.pushed), 1)
	assert.Equal(t, len(engine.tags), 0)
}

func TestPushRegistryRejectionSurfaces(t *testing.T) {
	engine := newFakeEngine()
	cfg := config.Default()
	ref := cfg.ImageRef("back", "v1.2.3")
	engine.images[ref] = true
	engine.pushErr[ref] = errors.New("401 unauthorized")
	p := NewPusher(engine, cfg, zerolog.Nop())

	outcome, err := p.Push(context.Background(), backSpec(), "v1.2.3")
	var pushErr *domain.PushError
	assert.Assert(t, errors.As(err, &pushErr))
	assert.ErrorContains(t, pushErr.Err, "401")
	assert.Assert(t, !outcome.Success)
}
