package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	storex "github.com/tanpawarit/market-digest-agents/agent/store"
)

// Probe checks that one external dependency answers.
type Probe struct {
	Name string
	Run  func(ctx context.Context) error
}

type ProbeResult struct {
	Name     string        `json:"name"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

func (p ProbeResult) OK() bool {
	return p.Err == nil
}

// Check runs the probes concurrently. Results keep the probe order and a
// failing probe never cancels the others.
func Check(ctx context.Context, probes ...Probe) []ProbeResult {
	results := make([]ProbeResult, len(probes))

	var g errgroup.Group
	for i, probe := range probes {
		i, probe := i, probe
		g.Go(func() error {
			start := time.Now()
			err := probe.Run(ctx)
			results[i] = ProbeResult{Name: probe.Name, Err: err, Duration: time.Since(start)}

			logger := zerolog.Ctx(ctx)
			if err != nil {
				logger.Error().Err(err).Str("probe", probe.Name).Msg("probe failed")
			} else {
				logger.Info().Str("probe", probe.Name).Dur("duration", results[i].Duration).Msg("probe ok")
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// CheckErr joins the errors of failed probes.
func CheckErr(results []ProbeResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("probe=%s: %w", r.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}

func StoreProbe(gw storex.Gateway) Probe {
	return Probe{
		Name: "store",
		Run: func(ctx context.Context) error {
			for _, table := range []string{contractx.TablePrice, contractx.TableNews} {
				if _, err := gw.Select(ctx, table, storex.Query{Limit: 1}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func ChatProbe(ping func(ctx context.Context) error) Probe {
	return Probe{
		Name: "chat_model",
		Run: func(ctx context.Context) error {
			if err := ping(ctx); err != nil {
				return fmt.Errorf("%w: %v", contractx.ErrGeneration, err)
			}
			return nil
		},
	}
}

// SearchProbe issues one query through search.
func SearchProbe(search func(ctx context.Context, query string) error) Probe {
	return Probe{
		Name: "search",
		Run: func(ctx context.Context) error {
			if err := search(ctx, "latest finance news"); err != nil {
				return fmt.Errorf("%w: %v", contractx.ErrSearch, err)
			}
			return nil
		},
	}
}

// EmailProbe sends a real test message.
func EmailProbe(transport contractx.MailTransport, from string, to []string) Probe {
	return Probe{
		Name: "email",
		Run: func(ctx context.Context) error {
			return transport.Send(ctx, contractx.EmailMessage{
				From:    from,
				To:      to,
				Subject: "Test Email",
				Body:    "This is a test email from the Financial AI Agent.",
			})
		},
	}
}
