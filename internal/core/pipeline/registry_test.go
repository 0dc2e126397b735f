package pipeline

import (
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

func TestDefaultCatalog(t *testing.T) {
	r := DefaultRegistry()
	assert.DeepEqual(t, r.Names(), []string{"play", "back", "chat", "uploader"})

	play, err := r.Lookup("play")
	assert.NilError(t, err)
	assert.Assert(t, play.ReleaseTracking)
	assert.Assert(t, !play.PresenceOnly())

	chat, err := r.Lookup("chat")
	assert.NilError(t, err)
	assert.Assert(t, chat.PresenceOnly())
	assert.Assert(t, !chat.ReleaseTracking)

	for _, name := range r.Names() {
		spec, err := r.Lookup(name)
		assert.NilError(t, err)
		assert.Assert(t, spec.HealthTimeout >= 20*time.Second)
		assert.Assert(t, spec.Port > 0)
		assert.Assert(t, spec.Dockerfile != "")
	}
}

func TestLookupUnknownService(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Lookup("minimap")
	var unknown *domain.UnknownServiceError
	assert.Assert(t, errors.As(err, &unknown))
	assert.Equal(t, unknown.Name, "minimap")
}

func TestSelectDefaultsToWholeCatalog(t *testing.T) {
	r := DefaultRegistry()
	specs, err := r.Select(nil)
	assert.NilError(t, err)
	assert.Equal(t, len(specs), 4)
	assert.Equal(t, specs[0].Name, "play")
}

func TestSelectRejectsUnknownName(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Select([]string{"play", "minimap"})
	var unknown *domain.UnknownServiceError
	assert.Assert(t, errors.As(err, &unknown))
}
