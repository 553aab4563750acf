package pipelinenode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

func ValidateRequest(in GraphInput, strict bool, now func() time.Time) (*GraphState, error) {
	if strings.TrimSpace(in.RunID) == "" {
		return nil, fmt.Errorf("%w: run id is empty", contractx.ErrValidation)
	}
	if now == nil {
		now = time.Now
	}

	stages := in.Stages
	if len(stages) == 0 {
		stages = AllStages
	}
	enabled := make(map[Stage]bool, len(stages))
	for _, s := range stages {
		switch s {
		case StagePrice, StageNews, StageCompose, StageDispatch:
			enabled[s] = true
		default:
			return nil, fmt.Errorf("%w: unknown stage %q", contractx.ErrValidation, s)
		}
	}

	return &GraphState{
		Report: Report{
			RunID:     in.RunID,
			StartedAt: now().UTC(),
		},
		Enabled: enabled,
		Strict:  strict,
		Now:     now,
	}, nil
}
