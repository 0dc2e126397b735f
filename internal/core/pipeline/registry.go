package pipeline

import (
	"time"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

// Registry is the immutable service catalog. Adding a service is a data
// change here, not a control-flow change anywhere else.
type Registry struct {
	order []string
	specs map[string]domain.ServiceSpec
}

// NewRegistry builds a catalog preserving the given order.
func NewRegistry(specs ...domain.ServiceSpec) *Registry {
	r := &Registry{specs: make(map[string]domain.ServiceSpec, len(specs))}
	for _, s := range specs {
		r.order = append(r.order, s.Name)
		r.specs[s.Name] = s
	}
	return r
}

// DefaultRegistry is the fixed catalog of universe services.
func DefaultRegistry() *Registry {
	return NewRegistry(
		domain.ServiceSpec{
			Name:          "play",
			ImageName:     "play",
			Dockerfile:    "play/Dockerfile",
			Port:          3000,
			HealthPath:    "/ping",
			HealthTimeout: 30 * time.Second,
			Bootstrap: []string{
				"SECRET_KEY=universe-verify",
				"API_URL=http://127.0.0.1:{port}",
				"PUSHER_URL=http://127.0.0.1:{port}",
				"FRONT_URL=http://127.0.0.1:{port}",
			},
			ReleaseTracking: true,
		},
		domain.ServiceSpec{
			Name:          "back",
			ImageName:     "back",
			Dockerfile:    "back/Dockerfile",
			Port:          8080,
			HealthPath:    "/ping",
			HealthTimeout: 20 * time.Second,
			Bootstrap: []string{
				"SECRET_KEY=universe-verify",
				"ADMIN_API_TOKEN=universe-verify",
				"PLAY_URL=http://127.0.0.1:{port}",
			},
		},
		domain.ServiceSpec{
			Name:       "chat",
			ImageName:  "chat",
			Dockerfile: "chat/Dockerfile",
			Port:       80,
			// No health endpoint; the static server answers 404 for
			// unknown paths, which still proves it is serving.
			HealthPath:    "",
			HealthTimeout: 20 * time.Second,
			Bootstrap: []string{
				"PUSHER_URL=http://127.0.0.1:{port}",
			},
		},
		domain.ServiceSpec{
			Name:          "uploader",
			ImageName:     "uploader",
			Dockerfile:    "uploader/Dockerfile",
			Port:          8080,
			HealthPath:    "/ping",
			HealthTimeout: 20 * time.Second,
			Bootstrap: []string{
				"UPLOADER_URL=http://127.0.0.1:{port}",
			},
		},
	)
}

// Lookup returns the spec for name, or UnknownServiceError if absent.
func (r *Registry) Lookup(name string) (domain.ServiceSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return domain.ServiceSpec{}, &domain.UnknownServiceError{Name: name}
	}
	return spec, nil
}

// Names enumerates the catalog in its fixed order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Select resolves a service subset: the whole catalog when names is empty,
// otherwise the named services in the given order. Unknown names fail
// before any side effect.
func (r *Registry) Select(names []string) ([]domain.ServiceSpec, error) {
	if len(names) == 0 {
		names = r.order
	}
	specs := make([]domain.ServiceSpec, 0, len(names))
	for _, n := range names {
		spec, err := r.Lookup(n)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
