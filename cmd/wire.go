package cmd

import (
	"context"
	"fmt"

	"github.com/tanpawarit/market-digest-agents/agent/agents/analysis"
	"github.com/tanpawarit/market-digest-agents/agent/agents/news"
	"github.com/tanpawarit/market-digest-agents/agent/agents/notify"
	"github.com/tanpawarit/market-digest-agents/agent/agents/pipeline"
	"github.com/tanpawarit/market-digest-agents/agent/agents/price"
	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	"github.com/tanpawarit/market-digest-agents/agent/llm"
	promptx "github.com/tanpawarit/market-digest-agents/agent/prompt"
	storex "github.com/tanpawarit/market-digest-agents/agent/store"
	bravex "github.com/tanpawarit/market-digest-agents/pkg/brave"
	coingeckox "github.com/tanpawarit/market-digest-agents/pkg/coingecko"
	configx "github.com/tanpawarit/market-digest-agents/pkg/config"
	mailgunx "github.com/tanpawarit/market-digest-agents/pkg/mailgun"
)

type recipientConfig struct {
	RecipientEmail string `envconfig:"RECIPIENT_EMAIL"`
}

// app holds what one command invocation built. Every run gets fresh
// components.
type app struct {
	store   storex.Gateway
	closers []func() error
	prompts promptx.PromptSet
}

func newApp(ctx context.Context) (*app, error) {
	storeCfg, err := configx.New[storex.Config]("STORE")
	if err != nil {
		return nil, err
	}
	gw, closeStore, err := storex.Open(ctx, *storeCfg)
	if err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		_ = closeStore()
		return nil, err
	}

	return &app{store: gw, closers: []func() error{closeStore}, prompts: prompts}, nil
}

func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *app) priceCollector() (*price.Collector, error) {
	cfg, err := configx.New[coingeckox.Config]("COINGECKO")
	if err != nil {
		return nil, err
	}
	client, err := coingeckox.NewClient(*cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}
	return price.New(client, a.store)
}

func llmConfig() (*llm.Config, error) {
	cfg, err := configx.New[llm.Config]("OPENAI")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func braveClient() (*bravex.Client, error) {
	cfg, err := configx.New[bravex.Config]("BRAVE")
	if err != nil {
		return nil, err
	}
	client, err := bravex.NewClient(*cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}
	return client, nil
}

func (a *app) newsCollector(ctx context.Context) (*news.Collector, error) {
	cfg, err := llmConfig()
	if err != nil {
		return nil, err
	}
	searcher, err := braveClient()
	if err != nil {
		return nil, err
	}

	modelCfg := cfg.ChatModelFor(contractx.AgentTypeResearcher)
	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}
	return news.New(ctx, chatModel, searcher, a.store, a.prompts)
}

func (a *app) composer(ctx context.Context) (*analysis.Composer, error) {
	cfg, err := llmConfig()
	if err != nil {
		return nil, err
	}
	analysisCfg, err := configx.New[analysis.Config]("ANALYSIS")
	if err != nil {
		return nil, err
	}

	modelCfg := cfg.ChatModelFor(contractx.AgentTypeAnalyst)
	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}
	return analysis.New(ctx, chatModel, a.store, a.prompts, *analysisCfg)
}

type mailSetup struct {
	transport  *notify.MailgunTransport
	from       string
	recipients []string
}

func newMailSetup() (*mailSetup, error) {
	mgCfg, err := configx.New[mailgunx.Config]("MAILGUN")
	if err != nil {
		return nil, err
	}
	rcpt, err := configx.New[recipientConfig]("")
	if err != nil {
		return nil, err
	}

	client, err := mailgunx.NewTransport(*mgCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}

	recipients := notify.SplitRecipients(rcpt.RecipientEmail)
	if len(recipients) == 0 && mgCfg.MailingList != "" {
		recipients = []string{mgCfg.MailingList}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: RECIPIENT_EMAIL or MAILGUN_MAILING_LIST is required", contractx.ErrConfiguration)
	}

	return &mailSetup{
		transport:  notify.NewMailgunTransport(client, mgCfg.MailingList),
		from:       mgCfg.Sender(),
		recipients: recipients,
	}, nil
}

// dispatcher uses the composer's fallback subject when one was built,
// else the ANALYSIS settings.
func dispatcher(composer *analysis.Composer) (*notify.Dispatcher, error) {
	mail, err := newMailSetup()
	if err != nil {
		return nil, err
	}

	var fallback string
	if composer != nil {
		fallback = composer.FallbackSubject()
	} else {
		analysisCfg, err := configx.New[analysis.Config]("ANALYSIS")
		if err != nil {
			return nil, err
		}
		fallback = analysisCfg.FallbackSubject
	}

	return notify.New(mail.transport, notify.Config{
		From:            mail.from,
		Recipients:      mail.recipients,
		FallbackSubject: fallback,
	})
}

// components builds only what the requested stages need.
func (a *app) components(ctx context.Context, stages []pipeline.Stage) (pipeline.Components, error) {
	var (
		c        pipeline.Components
		composer *analysis.Composer
	)
	for _, stage := range stages {
		switch stage {
		case pipeline.StagePrice:
			p, err := a.priceCollector()
			if err != nil {
				return c, err
			}
			c.Price = p
		case pipeline.StageNews:
			n, err := a.newsCollector(ctx)
			if err != nil {
				return c, err
			}
			c.News = n
		case pipeline.StageCompose:
			comp, err := a.composer(ctx)
			if err != nil {
				return c, err
			}
			composer = comp
			c.Composer = comp
		case pipeline.StageDispatch:
			d, err := dispatcher(composer)
			if err != nil {
				return c, err
			}
			c.Dispatcher = d
		}
	}
	return c, nil
}
