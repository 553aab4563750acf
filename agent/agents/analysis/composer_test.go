package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	promptx "github.com/tanpawarit/market-digest-agents/agent/prompt"
	storex "github.com/tanpawarit/market-digest-agents/agent/store"
)

type fakeChatModel struct {
	response *schema.Message
	err      error
	inputs   [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

type failingGateway struct{}

func (failingGateway) Insert(ctx context.Context, table string, record storex.Row) (storex.Row, error) {
	return nil, errors.New("down")
}

func (failingGateway) Select(ctx context.Context, table string, q storex.Query) ([]storex.Row, error) {
	return nil, errors.New("down")
}

func seed(t *testing.T, mem *storex.MemoryStore, prices, news int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < prices; i++ {
		rec := contractx.PriceRecord{
			Price:     decimal.NewFromInt(int64(60000 + i)),
			Timestamp: fmt.Sprintf("2024-05-01T12:%02d:00.000000+00:00", i),
		}
		if _, err := mem.Insert(ctx, contractx.TablePrice, storex.PriceRow(rec)); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	for i := 0; i < news; i++ {
		rec := contractx.NewsRecord{
			FinanceInfo: fmt.Sprintf("headline %02d", i),
			Timestamp:   fmt.Sprintf("2024-05-01T12:%02d:00.000000+00:00", i),
		}
		if _, err := mem.Insert(ctx, contractx.TableNews, storex.NewsRow(rec)); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
}

func TestComposeEmptyStoreSkipsGeneration(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name         string
		prices, news int
	}{
		{name: "both empty"},
		{name: "no news", prices: 3},
		{name: "no prices", news: 2},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mem := storex.NewMemoryStore()
			seed(t, mem, tc.prices, tc.news)
			model := &fakeChatModel{response: &schema.Message{Content: "Subject: x"}}

			composer, err := New(context.Background(), model, mem, promptx.LoadPromptSet(), Config{})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			_, err = composer.Compose(context.Background())
			if !errors.Is(err, contractx.ErrInsufficientData) {
				t.Fatalf("expected ErrInsufficientData, got %v", err)
			}
			if len(model.inputs) != 0 {
				t.Fatalf("model must not be called, got %d calls", len(model.inputs))
			}
		})
	}
}

func TestComposeBoundsInputsAndReturnsRawText(t *testing.T) {
	t.Parallel()

	mem := storex.NewMemoryStore()
	seed(t, mem, 8, 12)
	raw := "Subject: BTC Weekly\n\nDear Valued Investor,\n\nBody.\n\nBest regards,\nFinancial AI Agent\n"
	model := &fakeChatModel{response: &schema.Message{Role: schema.Assistant, Content: raw}}

	composer, err := New(context.Background(), model, mem, promptx.LoadPromptSet(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	doc, err := composer.Compose(context.Background())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if string(doc) != raw {
		t.Fatalf("document must be returned unmodified, got %q", doc)
	}

	if len(model.inputs) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(model.inputs))
	}
	msgs := model.inputs[0]
	if msgs[0].Role != schema.System || !strings.Contains(msgs[0].Content, "financial and crypto analyst") {
		t.Fatalf("unexpected persona: %#v", msgs[0])
	}
	user := msgs[1].Content
	for _, want := range []string{
		`"price":60007`,
		`"price":60003`,
		`"headline 11"`,
		`"headline 02"`,
		"Subject: Financial Update - BTC and Market Analysis",
		"no longer than 300 words",
		"Financial AI Agent",
	} {
		if !strings.Contains(user, want) {
			t.Fatalf("prompt missing %q:\n%s", want, user)
		}
	}
	for _, absent := range []string{`"price":60002`, `"headline 01"`} {
		if strings.Contains(user, absent) {
			t.Fatalf("prompt should not include %q", absent)
		}
	}
}

func TestComposeCustomLimits(t *testing.T) {
	t.Parallel()

	mem := storex.NewMemoryStore()
	seed(t, mem, 3, 3)
	model := &fakeChatModel{response: &schema.Message{Content: "Subject: s\nbody"}}

	composer, err := New(context.Background(), model, mem, promptx.LoadPromptSet(), Config{PriceLimit: 1, NewsLimit: 1, MaxWords: 120})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := composer.Compose(context.Background()); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	user := model.inputs[0][1].Content
	if strings.Contains(user, `"price":60001`) || !strings.Contains(user, `"price":60002`) {
		t.Fatalf("unexpected price window:\n%s", user)
	}
	if !strings.Contains(user, "no longer than 120 words") {
		t.Fatalf("word ceiling not applied:\n%s", user)
	}
}

func TestComposeGenerationFailures(t *testing.T) {
	t.Parallel()

	for name, model := range map[string]*fakeChatModel{
		"provider error": {err: errors.New("401")},
		"empty content":  {response: &schema.Message{Content: "   "}},
	} {
		model := model
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mem := storex.NewMemoryStore()
			seed(t, mem, 1, 1)
			composer, err := New(context.Background(), model, mem, promptx.LoadPromptSet(), Config{})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if _, err := composer.Compose(context.Background()); !errors.Is(err, contractx.ErrGeneration) {
				t.Fatalf("expected ErrGeneration, got %v", err)
			}
		})
	}
}

func TestComposeStoreFailure(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{}
	composer, err := New(context.Background(), model, failingGateway{}, promptx.LoadPromptSet(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := composer.Compose(context.Background()); !errors.Is(err, contractx.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if len(model.inputs) != 0 {
		t.Fatalf("model must not be called, got %d calls", len(model.inputs))
	}
}

func TestNewRequiresPrompts(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &fakeChatModel{}, storex.NewMemoryStore(), promptx.PromptSet{}, Config{})
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}

func TestComposeSkipsUndecodableRows(t *testing.T) {
	t.Parallel()

	mem := storex.NewMemoryStore()
	seed(t, mem, 2, 2)
	if _, err := mem.Insert(context.Background(), contractx.TableNews, storex.Row{
		contractx.FieldTimestamp: "2024-05-01T13:00:00.000000+00:00",
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	model := &fakeChatModel{response: &schema.Message{Content: "Subject: s\nbody"}}

	composer, err := New(context.Background(), model, mem, promptx.LoadPromptSet(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := composer.Compose(context.Background()); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(model.inputs) != 1 {
		t.Fatalf("expected one model call, got %d", len(model.inputs))
	}
	user := model.inputs[0][1].Content
	if !strings.Contains(user, `"headline 00"`) || !strings.Contains(user, `"headline 01"`) {
		t.Fatalf("valid news rows missing from prompt:\n%s", user)
	}
}

func TestComposeOnlyUndecodableRowsIsInsufficient(t *testing.T) {
	t.Parallel()

	mem := storex.NewMemoryStore()
	seed(t, mem, 1, 0)
	if _, err := mem.Insert(context.Background(), contractx.TableNews, storex.Row{
		contractx.FieldTimestamp: "2024-05-01T13:00:00.000000+00:00",
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	model := &fakeChatModel{}

	composer, err := New(context.Background(), model, mem, promptx.LoadPromptSet(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := composer.Compose(context.Background()); !errors.Is(err, contractx.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if len(model.inputs) != 0 {
		t.Fatalf("model must not be called, got %d calls", len(model.inputs))
	}
}

func TestFallbackSubject(t *testing.T) {
	t.Parallel()

	composer, err := New(context.Background(), &fakeChatModel{}, storex.NewMemoryStore(), promptx.LoadPromptSet(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := composer.FallbackSubject(); got != "Financial Update" {
		t.Fatalf("FallbackSubject() = %q, want default", got)
	}

	composer, err = New(context.Background(), &fakeChatModel{}, storex.NewMemoryStore(), promptx.LoadPromptSet(), Config{FallbackSubject: "Daily BTC"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := composer.FallbackSubject(); got != "Daily BTC" {
		t.Fatalf("FallbackSubject() = %q", got)
	}
}
