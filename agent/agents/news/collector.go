package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	promptx "github.com/tanpawarit/market-digest-agents/agent/prompt"
	storex "github.com/tanpawarit/market-digest-agents/agent/store"
	toolx "github.com/tanpawarit/market-digest-agents/agent/tool"
)

// Topic is one research domain. Role and Subject fill the persona and the
// task templates.
type Topic struct {
	Name    string
	Role    string
	Subject string
}

var DefaultTopics = []Topic{
	{Name: "macro-economic", Role: "financial", Subject: "macro economic"},
	{Name: "cryptocurrency", Role: "cryptocurrency", Subject: "Bitcoin"},
}

type Collector struct {
	runner       compose.Runnable[map[string]any, *schema.Message]
	execute      toolx.Executor
	allowedTools map[string]struct{}
	store        storex.Gateway
	topics       []Topic
	now          func() time.Time
}

var _ contractx.NewsCollector = (*Collector)(nil)

type Option func(*Collector)

func WithTopics(topics ...Topic) Option {
	return func(c *Collector) {
		if len(topics) > 0 {
			c.topics = append([]Topic(nil), topics...)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	searcher toolx.Searcher,
	store storex.Gateway,
	prompts promptx.PromptSet,
	opts ...Option,
) (*Collector, error) {
	if chatModel == nil {
		return nil, errors.New("news collector: chat model is required")
	}
	if searcher == nil {
		return nil, errors.New("news collector: searcher is required")
	}
	if store == nil {
		return nil, errors.New("news collector: store gateway is required")
	}
	if strings.TrimSpace(prompts.Researcher) == "" || strings.TrimSpace(prompts.ResearchTask) == "" {
		return nil, fmt.Errorf("%w: researcher prompts", contractx.ErrPromptMissing)
	}

	tools, execute := toolx.BuildForAgent(contractx.AgentTypeResearcher, searcher)
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrGeneration, contractx.AgentTypeResearcher, err)
	}

	runner, err := compileResearchGraph(ctx, toolModel, prompts.Researcher, prompts.ResearchTask)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrGeneration, err)
	}

	allowed := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowed[t.Name] = struct{}{}
	}

	c := &Collector{
		runner:       runner,
		execute:      execute,
		allowedTools: allowed,
		store:        store,
		topics:       append([]Topic(nil), DefaultTopics...),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Collect researches every topic in order. A failing topic never stops
// the ones after it; the returned result is valid alongside the error.
func (c *Collector) Collect(ctx context.Context) (contractx.NewsResult, error) {
	var (
		result contractx.NewsResult
		errs   []error
	)

	for _, topic := range c.topics {
		if err := ctx.Err(); err != nil {
			failure := contractx.TopicFailure{Topic: topic.Name, Err: err}
			result.Failures = append(result.Failures, failure)
			errs = append(errs, failure)
			continue
		}

		record, err := c.collectTopic(ctx, topic)
		if err != nil {
			failure := contractx.TopicFailure{Topic: topic.Name, Err: err}
			result.Failures = append(result.Failures, failure)
			errs = append(errs, failure)
			continue
		}
		if record != nil {
			result.Records = append(result.Records, *record)
		}
	}

	return result, errors.Join(errs...)
}

func (c *Collector) collectTopic(ctx context.Context, topic Topic) (*contractx.NewsRecord, error) {
	logger := zerolog.Ctx(ctx).With().Str("topic", topic.Name).Logger()

	msg, err := c.runner.Invoke(ctx, map[string]any{
		"role":    topic.Role,
		"subject": topic.Subject,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: research invoke: %v", contractx.ErrGeneration, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty research response", contractx.ErrGeneration)
	}

	requests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		logger.Info().Msg("model made no tool call, nothing to store")
		return nil, nil
	}

	req := requests[0]
	if _, ok := c.allowedTools[req.Tool]; !ok {
		return nil, fmt.Errorf("%w: tool=%s is not allowed for agent=%s", contractx.ErrSchemaViolation, req.Tool, contractx.AgentTypeResearcher)
	}

	out, err := c.execute(ctx, req.Tool, req.Args)
	if err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: tool=%s: %s", contractx.ErrSchemaViolation, req.Tool, out.Error)
	}

	search, ok := out.Result.(toolx.SearchOutput)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected search result type %T", contractx.ErrSchemaViolation, out.Result)
	}
	summary, ok := search.FirstDescription()
	if !ok {
		logger.Info().Str("query", search.Query).Msg("search returned no results, nothing to store")
		return nil, nil
	}

	record := contractx.NewsRecord{
		FinanceInfo: summary,
		Timestamp:   contractx.FormatTimestamp(c.now()),
	}
	if _, err := c.store.Insert(ctx, contractx.TableNews, storex.NewsRow(record)); err != nil {
		if !errors.Is(err, contractx.ErrStore) {
			err = fmt.Errorf("%w: %v", contractx.ErrStore, err)
		}
		return nil, err
	}

	logger.Info().Str("query", search.Query).Msg("news stored")
	return &record, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
