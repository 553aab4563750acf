package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tanpawarit/market-digest-agents/agent/agents/pipeline"
	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	chatmodelx "github.com/tanpawarit/market-digest-agents/pkg/chatmodel"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the store, chat model, search and email providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := log.Logger.WithContext(cmd.Context())
		sendEmail, _ := cmd.Flags().GetBool("send-test-email")

		probes := []pipeline.Probe{storeProbe(ctx), chatProbe(), searchProbe()}
		if sendEmail {
			probes = append(probes, emailProbe())
		}

		results := pipeline.Check(ctx, probes...)
		out := cmd.OutOrStdout()
		for _, r := range results {
			status := "ok"
			if !r.OK() {
				status = "FAILED: " + r.Err.Error()
			}
			fmt.Fprintf(out, "%-11s %s\n", r.Name, status)
		}
		return pipeline.CheckErr(results)
	},
}

func init() {
	checkCmd.Flags().Bool("send-test-email", false, "also send a real test email to the configured recipients")
}

func failedProbe(name string, err error) pipeline.Probe {
	return pipeline.Probe{
		Name: name,
		Run:  func(context.Context) error { return err },
	}
}

// storeProbe opens its own gateway and closes it once the probe ran.
func storeProbe(ctx context.Context) pipeline.Probe {
	a, err := newApp(ctx)
	if err != nil {
		return failedProbe("store", err)
	}
	probe := pipeline.StoreProbe(a.store)
	run := probe.Run
	probe.Run = func(ctx context.Context) error {
		defer a.Close()
		return run(ctx)
	}
	return probe
}

func chatProbe() pipeline.Probe {
	cfg, err := llmConfig()
	if err != nil {
		return failedProbe("chat_model", err)
	}
	modelCfg := cfg.ChatModelFor(contractx.AgentTypeAnalyst)
	client := chatmodelx.NewClient(modelCfg)
	return pipeline.ChatProbe(func(ctx context.Context) error {
		return chatmodelx.Ping(ctx, client, modelCfg.Model)
	})
}

func searchProbe() pipeline.Probe {
	client, err := braveClient()
	if err != nil {
		return failedProbe("search", err)
	}
	return pipeline.SearchProbe(func(ctx context.Context, query string) error {
		_, err := client.Search(ctx, query)
		return err
	})
}

func emailProbe() pipeline.Probe {
	mail, err := newMailSetup()
	if err != nil {
		return failedProbe("email", err)
	}
	return pipeline.EmailProbe(mail.transport, mail.from, mail.recipients)
}
