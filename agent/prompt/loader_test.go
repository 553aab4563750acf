package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if err := set.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, placeholder := range []string{"{prices}", "{news}", "{subject}", "{max_words}", "{signature}"} {
		if !strings.Contains(set.Analysis, placeholder) {
			t.Fatalf("analysis prompt missing %s", placeholder)
		}
	}
	if strings.ContainsAny(set.Analyst, "{}") {
		t.Fatal("analyst persona must not contain template braces")
	}
}

func TestValidateMissingPrompt(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	set.Analysis = "  "
	if err := set.Validate(); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("Validate() error = %v, want ErrPromptMissing", err)
	}
}
