package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	bravex "github.com/tanpawarit/market-digest-agents/pkg/brave"
)

const (
	ToolWebSearch = "search"
)

type Searcher interface {
	Search(ctx context.Context, query string) (bravex.SearchResults, error)
}

type SearchOutput struct {
	Query   string             `json:"query"`
	Results []bravex.WebResult `json:"results"`
}

// FirstDescription returns the summary of the first web result.
func (o SearchOutput) FirstDescription() (string, bool) {
	if len(o.Results) == 0 {
		return "", false
	}
	desc := strings.TrimSpace(o.Results[0].Description)
	return desc, desc != ""
}

// executeSearchTool reports bad arguments in ToolResult.Error and provider
// failures as an ErrSearch error.
func executeSearchTool(ctx context.Context, searcher Searcher, tool string, args map[string]any) (contractx.ToolResult, error) {
	rawQuery, ok := args["query"]
	if !ok {
		return contractx.ToolResult{
			Tool:  tool,
			Error: "query is required",
		}, nil
	}

	query, ok := rawQuery.(string)
	if !ok {
		return contractx.ToolResult{
			Tool:  tool,
			Error: "query must be a string",
		}, nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return contractx.ToolResult{
			Tool:  tool,
			Error: "query must not be empty",
		}, nil
	}

	results, err := searcher.Search(ctx, query)
	if err != nil {
		return contractx.ToolResult{
			Tool:  tool,
			Error: err.Error(),
		}, fmt.Errorf("%w: query=%q: %v", contractx.ErrSearch, query, err)
	}

	return contractx.ToolResult{
		Tool: tool,
		Result: SearchOutput{
			Query:   query,
			Results: results.Web.Results,
		},
	}, nil
}
