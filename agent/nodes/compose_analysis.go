package pipelinenode

import (
	"context"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

func ComposeAnalysis(ctx context.Context, in *GraphState, composer contractx.AnalysisComposer) (*GraphState, error) {
	if in == nil {
		return nil, nilStateErr()
	}

	runStage(ctx, in, StageCompose, composer == nil, in.abortErr(), func(ctx context.Context) error {
		doc, err := composer.Compose(ctx)
		if err != nil {
			return err
		}
		in.Report.Document = doc
		return nil
	})
	return in, nil
}
