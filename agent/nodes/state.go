package pipelinenode

import (
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

var (
	ErrAborted       = errors.New("run aborted by an earlier stage")
	ErrStageDisabled = errors.New("stage has no component configured")
)

type Stage string

const (
	StagePrice    Stage = "price"
	StageNews     Stage = "news"
	StageCompose  Stage = "compose"
	StageDispatch Stage = "dispatch"
)

var AllStages = []Stage{StagePrice, StageNews, StageCompose, StageDispatch}

type StageStatus string

const (
	StatusOK      StageStatus = "ok"
	StatusFailed  StageStatus = "failed"
	StatusSkipped StageStatus = "skipped"
)

type StageReport struct {
	Stage    Stage         `json:"stage"`
	Status   StageStatus   `json:"status"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

type Report struct {
	RunID     string                     `json:"run_id"`
	StartedAt time.Time                  `json:"started_at"`
	Stages    []StageReport              `json:"stages"`
	Price     *contractx.PriceRecord     `json:"price,omitempty"`
	News      contractx.NewsResult       `json:"news"`
	Document  contractx.AnalysisDocument `json:"document,omitempty"`
}

// Err joins the errors of every failed stage. Skipped stages do not count.
func (r Report) Err() error {
	var errs []error
	for _, s := range r.Stages {
		if s.Status == StatusFailed && s.Err != nil {
			errs = append(errs, fmt.Errorf("stage=%s: %w", s.Stage, s.Err))
		}
	}
	return errors.Join(errs...)
}

func (r Report) Stage(stage Stage) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageReport{}, false
}

type Components struct {
	Price      contractx.PriceCollector
	News       contractx.NewsCollector
	Composer   contractx.AnalysisComposer
	Dispatcher contractx.NotificationDispatcher
}

type GraphInput struct {
	RunID  string
	Stages []Stage
}

type GraphState struct {
	Report  Report
	Enabled map[Stage]bool
	Strict  bool
	Aborted bool
	Now     func() time.Time
}
