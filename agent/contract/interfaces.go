package contract

import "context"

type PriceCollector interface {
	Collect(ctx context.Context) (PriceRecord, error)
}

type AnalysisComposer interface {
	Compose(ctx context.Context) (AnalysisDocument, error)
}

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, doc AnalysisDocument) error
}

// MailTransport delivers a fully built message. Implementations wrap
// ErrDelivery on any non-2xx response.
type MailTransport interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type NewsCollector interface {
	Collect(ctx context.Context) (NewsResult, error)
}
