package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tanpawarit/market-digest-agents/agent/agents/pipeline"
	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	if got := exitCode(fmt.Errorf("%w: missing key", contractx.ErrConfiguration)); got != 2 {
		t.Fatalf("exitCode(config) = %d, want 2", got)
	}
	if got := exitCode(errors.New("boom")); got != 1 {
		t.Fatalf("exitCode(other) = %d, want 1", got)
	}
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printReport(&buf, pipeline.Report{
		RunID: "run-1",
		Stages: []pipeline.StageReport{
			{Stage: pipeline.StagePrice, Status: "ok"},
			{Stage: pipeline.StageNews, Status: "failed", Err: contractx.ErrSearch},
		},
		Price:    &contractx.PriceRecord{Price: decimal.RequireFromString("67123.45"), Timestamp: "2024-05-01T12:00:00.000000+00:00"},
		Document: "Subject: BTC",
	})

	out := buf.String()
	for _, want := range []string{"run run-1", "price", "failed", "web search failed", "price: 67123.45", "Subject: BTC"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	t.Parallel()

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "price", "news", "digest", "check"} {
		if !names[want] {
			t.Fatalf("command %q not registered", want)
		}
	}
}

func TestRunHelpExplainsStrictMode(t *testing.T) {
	t.Parallel()

	for _, want := range []string{"--strict", "PIPELINE_STRICT", "earlier runs"} {
		if !strings.Contains(runCmd.Long, want) {
			t.Fatalf("run help missing %q:\n%s", want, runCmd.Long)
		}
	}
}
