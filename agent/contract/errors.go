package contract

import (
	"errors"

	configx "github.com/tanpawarit/market-digest-agents/pkg/config"
)

var (
	ErrQuoteFetch       = errors.New("quote fetch failed")
	ErrStore            = errors.New("store operation failed")
	ErrSearch           = errors.New("web search failed")
	ErrGeneration       = errors.New("text generation failed")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrDelivery         = errors.New("email delivery failed")
	ErrConfiguration    = configx.ErrInvalid

	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
)
