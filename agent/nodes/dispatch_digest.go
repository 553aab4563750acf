package pipelinenode

import (
	"context"
	"errors"
	"strings"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

var ErrNoDocument = errors.New("no analysis document to dispatch")

func DispatchDigest(ctx context.Context, in *GraphState, dispatcher contractx.NotificationDispatcher) (*GraphState, error) {
	if in == nil {
		return nil, nilStateErr()
	}

	skipErr := in.abortErr()
	if skipErr == nil && strings.TrimSpace(string(in.Report.Document)) == "" {
		skipErr = ErrNoDocument
	}

	runStage(ctx, in, StageDispatch, dispatcher == nil, skipErr, func(ctx context.Context) error {
		return dispatcher.Dispatch(ctx, in.Report.Document)
	})
	return in, nil
}
