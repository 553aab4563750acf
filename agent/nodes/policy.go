package pipelinenode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

// runStage records the outcome of one stage and returns its status. A
// stage that is not enabled for this run returns an empty status.
func runStage(ctx context.Context, in *GraphState, stage Stage, missing bool, skipErr error, fn func(context.Context) error) StageStatus {
	if !in.Enabled[stage] {
		return ""
	}

	logger := zerolog.Ctx(ctx).With().Str("stage", string(stage)).Logger()

	if skipErr != nil {
		in.Report.Stages = append(in.Report.Stages, StageReport{Stage: stage, Status: StatusSkipped, Err: skipErr})
		logger.Warn().Err(skipErr).Msg("stage skipped")
		return StatusSkipped
	}
	if missing {
		in.Report.Stages = append(in.Report.Stages, StageReport{
			Stage:  stage,
			Status: StatusFailed,
			Err:    fmt.Errorf("%w: %w", contractx.ErrConfiguration, ErrStageDisabled),
		})
		logger.Error().Msg("stage has no component")
		return StatusFailed
	}

	start := in.Now()
	err := fn(logger.WithContext(ctx))
	report := StageReport{Stage: stage, Status: StatusOK, Duration: in.Now().Sub(start)}
	if err != nil {
		report.Status = StatusFailed
		report.Err = err
		logger.Error().Err(err).Dur("duration", report.Duration).Msg("stage failed")
	} else {
		logger.Info().Dur("duration", report.Duration).Msg("stage done")
	}
	in.Report.Stages = append(in.Report.Stages, report)
	return report.Status
}

// abortIfStrict stops the remaining stages after a collector failure when
// the run is strict.
func abortIfStrict(in *GraphState, status StageStatus) {
	if status == StatusFailed && in.Strict {
		in.Aborted = true
	}
}

func (in *GraphState) abortErr() error {
	if in.Aborted {
		return ErrAborted
	}
	return nil
}

func nilStateErr() error {
	return fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
}

// storeOnly reports whether err is only a store write failure, in which
// case the observed value is still worth keeping.
func storeOnly(err error) bool {
	return errors.Is(err, contractx.ErrStore)
}
