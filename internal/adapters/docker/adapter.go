package docker

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/ports"
)

// Adapter implements ports.ImageBuilder and ports.ContainerRunner using the
// Docker SDK.
type Adapter struct {
	cli *client.Client
	// registryAuth is the pre-encoded X-Registry-Auth payload. Credential
	// acquisition is out of scope; whatever identity reference is
	// configured gets passed through verbatim.
	registryAuth string
}

// NewAdapter creates a new Docker adapter from the environment.
func NewAdapter(registryAuth string) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	if registryAuth == "" {
		// The daemon expects the header to be present even for
		// pre-authenticated pushes.
		registryAuth = base64.URLEncoding.EncodeToString([]byte("{}"))
	}
	return &Adapter{cli: cli, registryAuth: registryAuth}, nil
}

// BuildImage tars the build context and builds ref from it.
func (a *Adapter) BuildImage(ctx context.Context, contextDir, dockerfile, ref string, buildArgs map[string]string) error {
	tar, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	args := make(map[string]*string, len(buildArgs))
	for k, v := range buildArgs {
		v := v
		args[k] = &v
	}

	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{ref},
		Dockerfile: dockerfile,
		BuildArgs:  args,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// The build result arrives as a JSON message stream; a failing step
	// surfaces as an error message inside it, not as a transport error.
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

// ImageExists reports whether ref is present in the local image store.
func (a *Adapter) ImageExists(ctx context.Context, ref string) (bool, error) {
	_, _, err := a.cli.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}
	return true, nil
}

// TagImage applies target as an additional reference for source.
func (a *Adapter) TagImage(ctx context.Context, source, target string) error {
	if err := a.cli.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", source, target, err)
	}
	return nil
}

// PushImage publishes ref and drains the push stream, surfacing any
// registry-level error embedded in it.
func (a *Adapter) PushImage(ctx context.Context, ref string) error {
	rc, err := a.cli.ImagePush(ctx, ref, types.ImagePushOptions{RegistryAuth: a.registryAuth})
	if err != nil {
		return fmt.Errorf("failed to push %s: %w", ref, err)
	}
	defer rc.Close()
	if err := jsonmessage.DisplayJSONMessagesStream(rc, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("push of %s rejected: %w", ref, err)
	}
	return nil
}

// RunContainer creates and starts one container with the given environment
// and the container port bound to the requested host port on loopback.
func (a *Adapter) RunContainer(ctx context.Context, spec ports.RunSpec) (string, error) {
	port, err := nat.NewPort("tcp", fmt.Sprintf("%d", spec.ContainerPort))
	if err != nil {
		return "", fmt.Errorf("invalid container port %d: %w", spec.ContainerPort, err)
	}

	resp, err := a.cli.ContainerCreate(ctx,
		&container.Config{
			Image:        spec.Image,
			Env:          spec.Env,
			ExposedPorts: nat.PortSet{port: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: spec.HostPort}},
			},
		},
		nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	return resp.ID, nil
}

// IsRunning reports whether the container is still alive.
func (a *Adapter) IsRunning(ctx context.Context, id string) (bool, error) {
	info, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}
	return info.State != nil && info.State.Running, nil
}

// ContainerLogs returns up to tail lines of combined stdout/stderr output.
func (a *Adapter) ContainerLogs(ctx context.Context, id string, tail int) (string, error) {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       "all",
	}
	if tail > 0 {
		opts.Tail = fmt.Sprintf("%d", tail)
	}
	rc, err := a.cli.ContainerLogs(ctx, id, opts)
	if err != nil {
		return "", fmt.Errorf("failed to read logs of %s: %w", id, err)
	}
	defer rc.Close()

	// The stream is multiplexed unless the container runs with a TTY;
	// demux both channels into one buffer.
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return "", fmt.Errorf("failed to demux logs of %s: %w", id, err)
	}
	return buf.String(), nil
}

// StopContainer stops a running container.
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	// Bounded so teardown cannot hang a cancelled run.
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return a.cli.ContainerStop(ctx, id, container.StopOptions{})
}

// RemoveContainer removes a stopped container.
func (a *Adapter) RemoveContainer(ctx context.Context, id string) error {
	return a.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
}
