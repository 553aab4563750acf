package pipeline

import (
	"context"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	nodex "github.com/tanpawarit/market-digest-agents/agent/nodes"
)

type (
	Stage       = nodex.Stage
	StageReport = nodex.StageReport
	Report      = nodex.Report
	Components  = nodex.Components
)

const (
	StagePrice    = nodex.StagePrice
	StageNews     = nodex.StageNews
	StageCompose  = nodex.StageCompose
	StageDispatch = nodex.StageDispatch
)

var (
	ErrAborted    = nodex.ErrAborted
	ErrNoDocument = nodex.ErrNoDocument
)

type Config struct {
	Strict bool `default:"false"`
}

type Runner struct {
	components Components
	strict     bool

	graphRunner compose.Runnable[nodex.GraphInput, nodex.Report]

	now   func() time.Time
	newID func() string
}

// New compiles the run graph. Components may be left nil for stages that
// are never requested.
func New(components Components, cfg Config) (*Runner, error) {
	r := &Runner{
		components: components,
		strict:     cfg.Strict,
		now:        time.Now,
		newID:      uuid.NewString,
	}

	graphRunner, err := r.compileRunGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

// Run executes every stage in order.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	return r.RunStages(ctx)
}

// RunStages executes only the given stages, still in pipeline order. The
// returned error joins the failures recorded in the report.
func (r *Runner) RunStages(ctx context.Context, stages ...Stage) (Report, error) {
	runID := r.newID()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Interface("stages", stages).Bool("strict", r.strict).Msg("pipeline run started")

	report, err := r.graphRunner.Invoke(ctx, nodex.GraphInput{
		RunID:  runID,
		Stages: stages,
	})
	if err != nil {
		return Report{RunID: runID}, err
	}

	runErr := report.Err()
	event := logger.Info()
	if runErr != nil {
		event = logger.Error().Err(runErr)
	}
	event.Int("stages", len(report.Stages)).
		Int("news_records", len(report.News.Records)).
		Bool("document", report.Document != "").
		Msg("pipeline run finished")

	return report, runErr
}
