package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

// Orchestrator sequences Build, Verify, and Push per service over the
// selected subset, in catalog order, with fail-fast abort: the first
// failing stage of any service ends the whole run.
type Orchestrator struct {
	registry *Registry
	builder  *Builder
	verifier *Verifier
	pusher   *Pusher
	log      zerolog.Logger
}

func NewOrchestrator(registry *Registry, builder *Builder, verifier *Verifier, pusher *Pusher, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{registry: registry, builder: builder, verifier: verifier, pusher: pusher, log: log}
}

// Run executes the pipeline described by run. The report is always
// returned, also on failure, so the operator sees which stages completed.
func (o *Orchestrator) Run(ctx context.Context, run domain.PipelineRun, extraArgs map[string]string) (*domain.RunReport, error) {
	if run.Version == "" {
		return nil, &domain.ConfigurationError{Reason: "version tag must not be empty"}
	}

	// Resolve the whole subset up-front: unknown names abort before any
	// side effect.
	specs, err := o.registry.Select(run.Services)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}

	// Dry-run never materializes an image, so nothing real can be
	// verified or pushed regardless of the explicit stage flags.
	verifyEnabled := run.Verify && !run.DryRun
	pushEnabled := run.Push && !run.DryRun

	report := domain.NewRunReport(run.ID, run.Version, names)
	o.log.Info().
		Str("run", run.ID).
		Str("version", run.Version).
		Strs("services", names).
		Bool("dry_run", run.DryRun).
		Msg("pipeline run started")

	for _, spec := range specs {
		if err := o.runService(ctx, run, spec, extraArgs, verifyEnabled, pushEnabled, report); err != nil {
			o.summarize(report)
			return report, fmt.Errorf("pipeline failed for service(s) %s: %w", strings.Join(report.Failed, ", "), err)
		}
	}

	o.summarize(report)
	return report, nil
}

func (o *Orchestrator) runService(ctx context.Context, run domain.PipelineRun, spec domain.ServiceSpec, extraArgs map[string]string, verifyEnabled, pushEnabled bool, report *domain.RunReport) error {
	imageRef, _ := o.builder.Plan(spec, run.Version, extraArgs)

	if run.Build {
		outcome, err := o.builder.Build(ctx, spec, run.Version, extraArgs, run.DryRun)
		if err != nil {
			report.Record(spec.Name, domain.StageBuild, domain.StatusFailure, outcome.Detail)
			return err
		}
		report.Record(spec.Name, domain.StageBuild, domain.StatusSuccess, outcome.Detail)
	} else {
		// Skipped build: later stages target the pre-existing image.
		report.Record(spec.Name, domain.StageBuild, domain.StatusSkipped, "")
	}

	if verifyEnabled {
		outcome, err := o.verifier.Verify(ctx, spec, imageRef, VerifyOptions{KeepInstance: run.KeepVerifyInstance})
		if err != nil {
			report.Record(spec.Name, domain.StageVerify, domain.StatusFailure, err.Error())
			if outcome.LogTail != "" {
				o.log.Error().Str("service", spec.Name).Msg("verify log tail:\n" + outcome.LogTail)
			}
			return err
		}
		detail := ""
		if outcome.NoisyLogs {
			detail = "noisy logs"
		}
		report.Record(spec.Name, domain.StageVerify, domain.StatusSuccess, detail)
	} else {
		report.Record(spec.Name, domain.StageVerify, domain.StatusSkipped, "")
	}

	if pushEnabled {
		outcome, err := o.pusher.Push(ctx, spec, run.Version)
		if err != nil {
			report.Record(spec.Name, domain.StagePush, domain.StatusFailure, err.Error())
			return err
		}
		detail := ""
		if !outcome.FloatingTagPushed {
			detail = "floating tag not republished"
		}
		report.Record(spec.Name, domain.StagePush, domain.StatusSuccess, detail)
	} else {
		report.Record(spec.Name, domain.StagePush, domain.StatusSkipped, "")
	}

	return nil
}

// summarize emits the final per-service, per-stage table through the logger.
func (o *Orchestrator) summarize(report *domain.RunReport) {
	for _, name := range o.registry.Names() {
		stages, ok := report.Outcomes[name]
		if !ok {
			continue
		}
		ev := o.log.Info().Str("service", name)
		for _, st := range domain.Stages() {
			out := stages[st]
			field := string(out.Status)
			if out.Detail != "" {
				field += " (" + out.Detail + ")"
			}
			ev = ev.Str(string(st), field)
		}
		ev.Msg("run summary")
	}
}
