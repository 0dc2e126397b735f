package ports

import "context"

// RunSpec describes one ephemeral container launch: which image, under what
// name, with which environment, and how the container port maps to the host.
type RunSpec struct {
	Name          string
	Image         string
	Env           []string
	ContainerPort int
	HostPort      string
}

// ContainerRunner defines the runtime operations for managing ephemeral
// containers. This interface allows switching between Docker, Podman, or a
// fake in tests without changing the verification logic.
type ContainerRunner interface {
	RunContainer(ctx context.Context, spec RunSpec) (string, error)
	IsRunning(ctx context.Context, id string) (bool, error)
	// ContainerLogs returns up to tail lines of combined output; tail <= 0
	// means the full log.
	ContainerLogs(ctx context.Context, id string, tail int) (string, error)
	StopContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string) error
}
