package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TablePrice = "btc_price"
	TableNews  = "eco_info"

	FieldTimestamp   = "timestamp"
	FieldPrice       = "price"
	FieldFinanceInfo = "finance_info"
)

// TimestampLayout is fixed width so that lexical order of stored
// timestamps equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout as well as any RFC 3339 value.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

type PriceRecord struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp string          `json:"timestamp"`
}

type NewsRecord struct {
	FinanceInfo string `json:"finance_info"`
	Timestamp   string `json:"timestamp"`
}

// AnalysisDocument is the raw model output, expected to start with a
// "Subject:" line.
type AnalysisDocument string

type EmailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type AgentType string

const (
	AgentTypeResearcher AgentType = "researcher"
	AgentTypeAnalyst    AgentType = "analyst"
)

// TopicFailure records why one news topic produced no record.
type TopicFailure struct {
	Topic string `json:"topic"`
	Err   error  `json:"-"`
}

func (f TopicFailure) Error() string {
	return "topic=" + f.Topic + ": " + f.Err.Error()
}

func (f TopicFailure) Unwrap() error {
	return f.Err
}

// NewsResult is valid even when News Collector returns an error: it lists
// the records created by the topics that succeeded.
type NewsResult struct {
	Records  []NewsRecord   `json:"records"`
	Failures []TopicFailure `json:"failures,omitempty"`
}
