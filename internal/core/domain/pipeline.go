package domain

import "time"

// Stage identifies one step of the per-service pipeline.
type Stage string

const (
	StageBuild  Stage = "build"
	StageVerify Stage = "verify"
	StagePush   Stage = "push"
)

// Stages lists the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageBuild, StageVerify, StagePush}
}

// StageStatus is the state of one stage for one service within a run.
type StageStatus string

const (
	StatusPending StageStatus = "pending"
	StatusSkipped StageStatus = "skipped"
	StatusSuccess StageStatus = "success"
	StatusFailure StageStatus = "failure"
)

// StageOutcome records the terminal state of a stage, with failure detail.
type StageOutcome struct {
	Status StageStatus
	Detail string
}

// PipelineRun captures everything decided by the operator before a run
// starts. The stage-enable fields are set once at construction and consulted
// only by the orchestrator; nothing re-derives them mid-run.
type PipelineRun struct {
	ID       string
	Services []string
	Version  string
	DryRun   bool

	Build  bool
	Verify bool
	Push   bool

	// KeepVerifyInstance leaves the ephemeral instance running after a
	// successful verification instead of reclaiming it.
	KeepVerifyInstance bool
}

// RunReport is the per-service, per-stage summary emitted at run end.
type RunReport struct {
	RunID    string
	Version  string
	Outcomes map[string]map[Stage]StageOutcome
	Failed   []string
}

// NewRunReport seeds every selected service with pending stages.
func NewRunReport(runID, version string, services []string) *RunReport {
	outcomes := make(map[string]map[Stage]StageOutcome, len(services))
	for _, svc := range services {
		stages := make(map[Stage]StageOutcome, 3)
		for _, st := range Stages() {
			stages[st] = StageOutcome{Status: StatusPending}
		}
		outcomes[svc] = stages
	}
	return &RunReport{RunID: runID, Version: version, Outcomes: outcomes}
}

// Record sets the outcome of one stage for one service.
func (r *RunReport) Record(service string, stage Stage, status StageStatus, detail string) {
	r.Outcomes[service][stage] = StageOutcome{Status: status, Detail: detail}
	if status == StatusFailure {
		r.Failed = append(r.Failed, service)
	}
}

// BuildOutcome is the result of building (or dry-run planning) one image.
type BuildOutcome struct {
	Service  string
	ImageRef string
	// BuildArgs is the exact parameter set handed to the engine. Dry-run
	// reports the identical set so the plan stays trustworthy.
	BuildArgs map[string]string
	Success   bool
	Detail    string
}

// VerificationOutcome is the result of proving one image serves traffic.
type VerificationOutcome struct {
	Service string
	Passed  bool
	Elapsed time.Duration
	// LastStatus is the last HTTP status observed, 0 if none was received.
	LastStatus int
	LogTail    string
	// NoisyLogs is the advisory warning raised when the error-keyword scan
	// exceeds its threshold. It never flips Passed.
	NoisyLogs bool
	// InstanceID and HostPort identify the ephemeral instance; populated
	// on failure for diagnostics and when the instance is left running.
	InstanceID string
	HostPort   string
}

// PushOutcome is the result of publishing one verified image.
type PushOutcome struct {
	Service  string
	ImageRef string
	Success  bool
	// FloatingTagPushed reports the best-effort floating-tag republish.
	// False never fails the run when the primary reference landed.
	FloatingTagPushed bool
}
