package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

var (
	//go:embed template/researcher.txt
	researcherRaw string

	//go:embed template/research_task.txt
	researchTaskRaw string

	//go:embed template/analyst.txt
	analystRaw string

	//go:embed template/analysis.txt
	analysisRaw string
)

// PromptSet holds loaded prompt content. Templates use single-brace
// placeholders rendered by the eino FString formatter.
type PromptSet struct {
	Researcher   string
	ResearchTask string
	Analyst      string
	Analysis     string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Researcher:   strings.TrimSpace(researcherRaw),
		ResearchTask: strings.TrimSpace(researchTaskRaw),
		Analyst:      strings.TrimSpace(analystRaw),
		Analysis:     strings.TrimSpace(analysisRaw),
	}
}

func (p PromptSet) Validate() error {
	for name, body := range map[string]string{
		"researcher":    p.Researcher,
		"research_task": p.ResearchTask,
		"analyst":       p.Analyst,
		"analysis":      p.Analysis,
	} {
		if strings.TrimSpace(body) == "" {
			return fmt.Errorf("%w: %s", contractx.ErrPromptMissing, name)
		}
	}
	return nil
}
