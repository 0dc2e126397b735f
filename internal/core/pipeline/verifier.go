package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BAWES-Universe/workadventure-universe/internal/config"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
	"github.com/BAWES-Universe/workadventure-universe/internal/core/ports"
)

const (
	// pollInterval is the fixed pause between health probes.
	pollInterval = 2 * time.Second
	// logTailLines bounds the log excerpt attached to failures.
	logTailLines = 30
	// noisyLogThreshold is the error-keyword count above which the
	// advisory warning is raised.
	noisyLogThreshold = 5
)

// errorKeywords feed the non-fatal post-success log scan.
var errorKeywords = []string{"error", "panic", "fatal", "exception"}

// portAllocator hands out randomized host ports from a wide range.
// Within the process a taken port is never handed out twice, so parallel
// verifications in one run cannot collide; across processes the width of
// the range is the only guard, as specified.
type portAllocator struct {
	min, width int

	mu    sync.Mutex
	taken map[int]bool
}

func newPortAllocator(r config.PortRange) *portAllocator {
	return &portAllocator{min: r.Min, width: r.Max - r.Min + 1, taken: make(map[int]bool)}
}

func (a *portAllocator) allocate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	for {
		p := a.min + rand.IntN(a.width)
		if !a.taken[p] {
			a.taken[p] = true
			return p
		}
	}
}

func (a *portAllocator) release(p int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.taken, p)
}

// VerifyOptions carries the per-invocation overrides.
type VerifyOptions struct {
	// KeepInstance leaves the ephemeral instance running instead of
	// reclaiming it; the outcome then reports its identity and port.
	KeepInstance bool
}

// Verifier proves a built image starts and serves traffic by launching one
// ephemeral instance and polling its health semantics under the service's
// timeout. No durable deployment is involved.
type Verifier struct {
	runner ports.ContainerRunner
	client *http.Client
	allo   *portAllocator
	log    zerolog.Logger

	// interval is pollInterval in production; tests shrink it.
	interval time.Duration
}

func NewVerifier(runner ports.ContainerRunner, cfg *config.Config, log zerolog.Logger) *Verifier {
	return &Verifier{
		runner:   runner,
		client:   &http.Client{Timeout: pollInterval},
		allo:     newPortAllocator(cfg.VerifyPorts),
		log:      log,
		interval: pollInterval,
	}
}

// Verify launches imageRef with the service's bootstrap environment and
// polls it until healthy, crashed, or out of time.
func (v *Verifier) Verify(ctx context.Context, spec domain.ServiceSpec, imageRef string, opts VerifyOptions) (domain.VerificationOutcome, error) {
	hostPort := v.allo.allocate()
	port := strconv.Itoa(hostPort)
	outcome := domain.VerificationOutcome{Service: spec.Name, HostPort: port}

	name := fmt.Sprintf("verify-%s-%s", spec.Name, uuid.NewString()[:8])
	id, err := v.runner.RunContainer(ctx, ports.RunSpec{
		Name:          name,
		Image:         imageRef,
		Env:           spec.BootstrapEnv(port),
		ContainerPort: spec.Port,
		HostPort:      port,
	})
	if err != nil {
		v.allo.release(hostPort)
		return outcome, &domain.VerificationStartError{Service: spec.Name, Err: err}
	}
	outcome.InstanceID = id

	kept := false
	defer func() {
		if kept {
			return
		}
		v.teardown(id)
		v.allo.release(hostPort)
	}()

	path := spec.HealthPath
	if spec.PresenceOnly() {
		path = "/"
	}
	url := "http://127.0.0.1:" + port + path

	v.log.Info().
		Str("service", spec.Name).
		Str("instance", id).
		Str("url", url).
		Dur("timeout", spec.HealthTimeout).
		Msg("verifying image")

	start := time.Now()
	for {
		alive, err := v.runner.IsRunning(ctx, id)
		if err != nil {
			return outcome, fmt.Errorf("verify %s: failed to inspect instance: %w", spec.Name, err)
		}
		if !alive {
			outcome.LogTail, _ = v.runner.ContainerLogs(ctx, id, logTailLines)
			outcome.Elapsed = time.Since(start)
			return outcome, &domain.VerificationCrashError{Service: spec.Name, InstanceID: id, LogTail: outcome.LogTail}
		}

		status, responded := v.probe(ctx, url)
		if responded {
			outcome.LastStatus = status
		}
		healthy := responded && (spec.PresenceOnly() || (status >= 200 && status < 300))
		if healthy {
			outcome.Passed = true
			outcome.Elapsed = time.Since(start)
			fullLog, _ := v.runner.ContainerLogs(ctx, id, 0)
			outcome.LogTail = tailLines(fullLog, logTailLines)
			if countErrorKeywords(fullLog) > noisyLogThreshold {
				outcome.NoisyLogs = true
				v.log.Warn().Str("service", spec.Name).Msg("healthy, but log contains an elevated number of error keywords")
			}
			if opts.KeepInstance {
				kept = true
				v.log.Info().Str("instance", id).Str("port", port).Msg("leaving verify instance running")
			}
			v.log.Info().
				Str("service", spec.Name).
				Int("status", status).
				Dur("elapsed", outcome.Elapsed).
				Msg("image verified")
			return outcome, nil
		}

		if time.Since(start) >= spec.HealthTimeout {
			fullLog, _ := v.runner.ContainerLogs(ctx, id, 0)
			outcome.LogTail = tailLines(fullLog, logTailLines)
			outcome.Elapsed = time.Since(start)
			return outcome, &domain.VerificationTimeoutError{
				Service:    spec.Name,
				Elapsed:    outcome.Elapsed,
				LastStatus: outcome.LastStatus,
				Log:        fullLog,
			}
		}

		v.log.Debug().Str("service", spec.Name).Int("status", status).Msg("not healthy yet")
		select {
		case <-ctx.Done():
			outcome.Elapsed = time.Since(start)
			return outcome, ctx.Err()
		case <-time.After(v.interval):
		}
	}
}

// probe issues one GET. The second return is false on transport errors
// (connection refused, reset), which keep the poll going; any received
// status, including errors, counts as a response.
func (v *Verifier) probe(ctx context.Context, url string) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, false
	}
	resp.Body.Close()
	return resp.StatusCode, true
}

// teardown reclaims the ephemeral instance. It runs on its own context so
// it still works when the run's context was cancelled.
func (v *Verifier) teardown(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := v.runner.StopContainer(ctx, id); err != nil {
		v.log.Warn().Str("instance", id).Err(err).Msg("failed to stop verify instance")
	}
	if err := v.runner.RemoveContainer(ctx, id); err != nil {
		v.log.Warn().Str("instance", id).Err(err).Msg("failed to remove verify instance")
	}
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

func countErrorKeywords(log string) int {
	count := 0
	for _, line := range strings.Split(strings.ToLower(log), "\n") {
		for _, kw := range errorKeywords {
			if strings.Contains(line, kw) {
				count++
				break
			}
		}
	}
	return count
}
