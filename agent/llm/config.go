package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	chatmodelx "github.com/tanpawarit/market-digest-agents/pkg/chatmodel"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-3.5-turbo"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ResearchModel       string  `envconfig:"RESEARCH_MODEL" split_words:"true"`
	AnalystModel        string  `envconfig:"ANALYST_MODEL" split_words:"true"`
	ResearchTemperature float32 `envconfig:"RESEARCH_TEMPERATURE" split_words:"true" default:"-1"`
	AnalystTemperature  float32 `envconfig:"ANALYST_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openai api key is required", contractx.ErrConfiguration)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrConfiguration)
	}
	return nil
}

// ChatModelFor resolves the endpoint settings of one agent, applying its
// model and temperature overrides when set.
func (c Config) ChatModelFor(agentType contractx.AgentType) chatmodelx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeResearcher:
		if v := strings.TrimSpace(c.ResearchModel); v != "" {
			modelName = v
		}
		if c.ResearchTemperature >= 0 {
			temp = c.ResearchTemperature
		}
	case contractx.AgentTypeAnalyst:
		if v := strings.TrimSpace(c.AnalystModel); v != "" {
			modelName = v
		}
		if c.AnalystTemperature >= 0 {
			temp = c.AnalystTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return chatmodelx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
