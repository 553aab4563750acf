package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	mailgunx "github.com/tanpawarit/market-digest-agents/pkg/mailgun"
)

type Config struct {
	From            string
	Recipients      []string
	FallbackSubject string
}

type Dispatcher struct {
	cfg       Config
	transport contractx.MailTransport
}

var _ contractx.NotificationDispatcher = (*Dispatcher)(nil)

func New(transport contractx.MailTransport, cfg Config) (*Dispatcher, error) {
	if transport == nil {
		return nil, errors.New("notify: mail transport is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("%w: sender address is required", contractx.ErrConfiguration)
	}
	if len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", contractx.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.FallbackSubject) == "" {
		cfg.FallbackSubject = "Financial Update"
	}
	return &Dispatcher{cfg: cfg, transport: transport}, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, doc contractx.AnalysisDocument) error {
	subject, body := ParseDocument(doc, d.cfg.FallbackSubject)
	msg := contractx.EmailMessage{
		From:    d.cfg.From,
		To:      append([]string(nil), d.cfg.Recipients...),
		Subject: subject,
		Body:    body,
	}

	if err := d.transport.Send(ctx, msg); err != nil {
		if !errors.Is(err, contractx.ErrDelivery) {
			err = fmt.Errorf("%w: %v", contractx.ErrDelivery, err)
		}
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("subject", subject).
		Strs("to", msg.To).
		Msg("email dispatched")
	return nil
}

// MailgunTransport adapts the Mailgun client to MailTransport.
type MailgunTransport struct {
	client      *mailgunx.Transport
	mailingList string
}

var _ contractx.MailTransport = (*MailgunTransport)(nil)

// NewMailgunTransport sends through client. A non-empty mailingList
// replaces the recipients of every message.
func NewMailgunTransport(client *mailgunx.Transport, mailingList string) *MailgunTransport {
	return &MailgunTransport{client: client, mailingList: strings.TrimSpace(mailingList)}
}

func (t *MailgunTransport) Send(ctx context.Context, msg contractx.EmailMessage) error {
	to := msg.To
	if t.mailingList != "" {
		to = []string{t.mailingList}
	}

	id, err := t.client.Send(ctx, mailgunx.Message{
		From:    msg.From,
		To:      to,
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrDelivery, err)
	}

	zerolog.Ctx(ctx).Debug().Str("message_id", id).Msg("mailgun accepted message")
	return nil
}
