package pipeline

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/market-digest-agents/agent/nodes"
)

func (r *Runner) compileRunGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.Report], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.Report]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, r.strict, r.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("collect_price",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CollectPrice(ctx, in, r.components.Price)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node collect_price: %w", err)
	}

	if err := graph.AddLambdaNode("collect_news",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CollectNews(ctx, in, r.components.News)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node collect_news: %w", err)
	}

	if err := graph.AddLambdaNode("compose_analysis",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ComposeAnalysis(ctx, in, r.components.Composer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_analysis: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_digest",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchDigest(ctx, in, r.components.Dispatcher)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_digest: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_report",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.Report, error) {
			return nodex.FinalizeReport(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_report: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "collect_price"},
		{"collect_price", "collect_news"},
		{"collect_news", "compose_analysis"},
		{"compose_analysis", "dispatch_digest"},
		{"dispatch_digest", "finalize_report"},
		{"finalize_report", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("pipeline.run"))
	if err != nil {
		return nil, fmt.Errorf("compile pipeline graph: %w", err)
	}
	return runner, nil
}
