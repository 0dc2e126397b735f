package domain

import (
	"fmt"
	"time"
)

// UnknownServiceError reports an operator-specified service name absent
// from the catalog. Raised before any side effect.
type UnknownServiceError struct {
	Name string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q", e.Name)
}

// ConfigurationError reports invalid operator input or pipeline
// configuration, detected before any side effect.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// BuildError reports a failed image build, carrying the tool's exit detail.
type BuildError struct {
	Service string
	Detail  string
	Err     error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build %s: %s: %v", e.Service, e.Detail, e.Err)
	}
	return fmt.Sprintf("build %s: %s", e.Service, e.Detail)
}

func (e *BuildError) Unwrap() error { return e.Err }

// VerificationStartError reports an ephemeral instance that failed to launch.
type VerificationStartError struct {
	Service string
	Err     error
}

func (e *VerificationStartError) Error() string {
	return fmt.Sprintf("verify %s: instance failed to launch: %v", e.Service, e.Err)
}

func (e *VerificationStartError) Unwrap() error { return e.Err }

// VerificationCrashError reports an instance that exited before reaching
// healthy. The log tail is the last lines captured before the exit.
type VerificationCrashError struct {
	Service    string
	InstanceID string
	LogTail    string
}

func (e *VerificationCrashError) Error() string {
	return fmt.Sprintf("verify %s: instance %s exited before becoming healthy", e.Service, e.InstanceID)
}

// VerificationTimeoutError reports a health check that never succeeded
// within the service's budget. Log carries the full captured output.
type VerificationTimeoutError struct {
	Service    string
	Elapsed    time.Duration
	LastStatus int
	Log        string
}

func (e *VerificationTimeoutError) Error() string {
	if e.LastStatus != 0 {
		return fmt.Sprintf("verify %s: not healthy after %s (last status %d)", e.Service, e.Elapsed.Round(time.Second), e.LastStatus)
	}
	return fmt.Sprintf("verify %s: no response after %s", e.Service, e.Elapsed.Round(time.Second))
}

// PushError reports a missing local image or a registry rejection.
type PushError struct {
	Service  string
	ImageRef string
	Detail   string
	Err      error
}

func (e *PushError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("push %s (%s): %s: %v", e.Service, e.ImageRef, e.Detail, e.Err)
	}
	return fmt.Sprintf("push %s (%s): %s", e.Service, e.ImageRef, e.Detail)
}

func (e *PushError) Unwrap() error { return e.Err }
