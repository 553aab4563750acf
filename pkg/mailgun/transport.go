package mailgun

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

var ErrSend = errors.New("mailgun: send failed")

type Config struct {
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Domain      string        `split_words:"true" required:"true"`
	FromEmail   string        `envconfig:"FROM_EMAIL" split_words:"true" required:"true"`
	APIBase     string        `envconfig:"API_BASE" split_words:"true" default:"https://api.mailgun.net/v3"`
	SenderName  string        `split_words:"true"`
	MailingList string        `split_words:"true"`
	Timeout     time.Duration `split_words:"true" default:"30s"`
}

// Sender renders the from header, adding the display name when configured.
func (c Config) Sender() string {
	from := strings.TrimSpace(c.FromEmail)
	if name := strings.TrimSpace(c.SenderName); name != "" {
		return fmt.Sprintf("%s <%s>", name, from)
	}
	return from
}

type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
}

type Transport struct {
	client *mg.MailgunImpl
}

type Option func(*mg.MailgunImpl)

func WithHTTPClient(client *http.Client) Option {
	return func(m *mg.MailgunImpl) {
		if client != nil {
			m.SetClient(client)
		}
	}
}

func NewTransport(cfg Config, opts ...Option) (*Transport, error) {
	domain := strings.TrimSpace(cfg.Domain)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if domain == "" || apiKey == "" {
		return nil, errors.New("mailgun domain and api key are required")
	}

	client := mg.NewMailgun(domain, apiKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/"); base != "" {
		client.SetAPIBase(base)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetClient(&http.Client{Timeout: timeout})

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return &Transport{client: client}, nil
}

// Send posts the message as from/to/subject/text form fields. It returns
// the provider message id.
func (t *Transport) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("%w: no recipients", ErrSend)
	}

	m := t.client.NewMessage(msg.From, msg.Subject, msg.Text, msg.To...)
	_, id, err := t.client.Send(ctx, m)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSend, err)
	}
	return id, nil
}
