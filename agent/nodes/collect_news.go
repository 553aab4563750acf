package pipelinenode

import (
	"context"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

// CollectNews keeps the partial result of a news run even when some topics
// failed.
func CollectNews(ctx context.Context, in *GraphState, collector contractx.NewsCollector) (*GraphState, error) {
	if in == nil {
		return nil, nilStateErr()
	}

	status := runStage(ctx, in, StageNews, collector == nil, in.abortErr(), func(ctx context.Context) error {
		result, err := collector.Collect(ctx)
		in.Report.News = result
		return err
	})
	abortIfStrict(in, status)
	return in, nil
}
