package pipelinenode

import (
	"context"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

func CollectPrice(ctx context.Context, in *GraphState, collector contractx.PriceCollector) (*GraphState, error) {
	if in == nil {
		return nil, nilStateErr()
	}

	status := runStage(ctx, in, StagePrice, collector == nil, in.abortErr(), func(ctx context.Context) error {
		record, err := collector.Collect(ctx)
		if err == nil || (storeOnly(err) && record.Timestamp != "") {
			in.Report.Price = &record
		}
		return err
	})
	abortIfStrict(in, status)
	return in, nil
}
