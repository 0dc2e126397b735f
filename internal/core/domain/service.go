package domain

import (
	"strings"
	"time"
)

// ServiceSpec describes one deployable service of the universe: where its
// image is built from, how it is addressed, and how to decide it is healthy.
// Specs live in the immutable catalog owned by the service registry.
type ServiceSpec struct {
	// Name is the catalog key, e.g. "play".
	Name string
	// ImageName is the service part of the image reference. Usually equal
	// to Name but kept separate so the reference format stays a data concern.
	ImageName string
	// Dockerfile is the image source descriptor path, relative to the
	// repository root the pipeline runs in.
	Dockerfile string
	// Port is the container port the service listens on.
	Port int
	// HealthPath is the GET path polled during verification. Empty means
	// the service is presence-only: any HTTP response counts as healthy.
	HealthPath string
	// HealthTimeout bounds the verification polling loop.
	HealthTimeout time.Duration
	// Bootstrap is the minimal environment for a standalone start, as
	// KEY=VALUE pairs. The literal "{port}" is replaced with the allocated
	// host port so self-referential URLs resolve.
	Bootstrap []string
	// ReleaseTracking marks the front-end service: release-tracking build
	// args are forwarded only to it.
	ReleaseTracking bool
}

// PresenceOnly reports whether the service has no real health endpoint.
func (s ServiceSpec) PresenceOnly() bool {
	return s.HealthPath == ""
}

// BootstrapEnv renders the bootstrap template for a concrete host port.
func (s ServiceSpec) BootstrapEnv(hostPort string) []string {
	env := make([]string, 0, len(s.Bootstrap))
	for _, kv := range s.Bootstrap {
		env = append(env, strings.ReplaceAll(kv, "{port}", hostPort))
	}
	return env
}
