package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/ports"
)

type buildCall struct {
	contextDir string
	dockerfile string
	ref        string
	args       map[string]string
}

type tagCall struct {
	source string
	target string
}

// fakeEngine implements ports.ImageBuilder against an in-memory image store.
type fakeEngine struct {
	mu sync.Mutex

	built  []buildCall
	tags   []tagCall
	pushed []string
	images map[string]bool

	buildErr error
	tagErr   error
	// pushErr fails pushes of specific refs.
	pushErr map[string]error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{images: make(map[string]bool), pushErr: make(map[string]error)}
}

func (f *fakeEngine) BuildImage(_ context.Context, contextDir, dockerfile, ref string, buildArgs map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buildErr != nil {
		return f.buildErr
	}
	f.built = append(f.built, buildCall{contextDir: contextDir, dockerfile: dockerfile, ref: ref, args: buildArgs})
	f.images[ref] = true
	return nil
}

func (f *fakeEngine) ImageExists(_ context.Context, ref string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.images[ref], nil
}

func (f *fakeEngine) TagImage(_ context.Context, source, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tagErr != nil {
		return f.tagErr
	}
	f.tags = append(f.tags, tagCall{source: source, target: target})
	f.images[target] = true
	return nil
}

func (f *fakeEngine) PushImage(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pushErr[ref]; err != nil {
		return err
	}
	f.pushed = append(f.pushed, ref)
	return nil
}

// fakeRunner implements ports.ContainerRunner. The onRun hook lets tests
// start a real listener on the host port the verifier allocated.
type fakeRunner struct {
	mu sync.Mutex

	onRun  func(spec ports.RunSpec)
	runErr error
	alive  bool
	logs   string

	runs    []ports.RunSpec
	stopped []string
	removed []string
	nextID  int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{alive: true}
}

func (f *fakeRunner) RunContainer(_ context.Context, spec ports.RunSpec) (string, error) {
	f.mu.Lock()
	if f.runErr != nil {
		f.mu.Unlock()
		return "", f.runErr
	}
	f.nextID++
	id := fmt.Sprintf("inst-%d", f.nextID)
	f.runs = append(f.runs, spec)
	hook := f.onRun
	f.mu.Unlock()
	if hook != nil {
		hook(spec)
	}
	return id, nil
}

func (f *fakeRunner) IsRunning(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive, nil
}

func (f *fakeRunner) ContainerLogs(_ context.Context, _ string, tail int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tail > 0 {
		return tailLines(f.logs, tail), nil
	}
	return f.logs, nil
}

func (f *fakeRunner) StopContainer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeRunner) RemoveContainer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeRunner) stoppedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.stopped))
	copy(out, f.stopped)
	return out
}

func (f *fakeRunner) removedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.removed))
	copy(out, f.removed)
	return out
}
