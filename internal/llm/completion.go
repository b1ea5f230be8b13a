package llm

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Completer is the contract the pipeline assumes of the completion service:
// text in, text out, or no result.
type Completer interface {
	Complete(ctx context.Context, inputText, instructionPrompt string) (string, bool)
}

// CompletionClient adapts a Client to the Completer contract. Any transport
// failure, non-success response or empty completion is reported as ("", false)
// so call sites never need error handling for "no result". It does not retry.
type CompletionClient struct {
	client Client
	tier   ModelTier
	logger zerolog.Logger
}

// NewCompletionClient creates a CompletionClient using the given tier
func NewCompletionClient(client Client, tier ModelTier, logger zerolog.Logger) *CompletionClient {
	return &CompletionClient{client: client, tier: tier, logger: logger}
}

// WithTier returns a copy that calls the provider with a different model tier
func (c *CompletionClient) WithTier(tier ModelTier) *CompletionClient {
	clone := *c
	clone.tier = tier
	return &clone
}

// Complete combines instruction and input, calls the provider, and returns
// the completion text.
func (c *CompletionClient) Complete(ctx context.Context, inputText, instructionPrompt string) (string, bool) {
	rid := uuid.NewString()
	start := time.Now()
	log := c.logger.With().
		Str("req_id", rid).
		Str("tier", string(c.tier)).
		Str("model", c.client.GetModel(c.tier)).
		Logger()

	log.Debug().
		Int("input_len", len(inputText)).
		Int("prompt_len", len(instructionPrompt)).
		Msg("llm.complete.start")

	text, err := c.client.GenerateContent(ctx, BuildPrompt(instructionPrompt, inputText), c.tier)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Error().Err(err).Int64("elapsed_ms", elapsed).Msg("llm.complete.error")
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		log.Warn().Int64("elapsed_ms", elapsed).Msg("llm.complete.empty")
		return "", false
	}

	log.Info().Int("output_len", len(text)).Int64("elapsed_ms", elapsed).Msg("llm.complete.ok")
	return text, true
}

// BuildPrompt joins an instruction prompt and its input text the way every
// provider receives it: instructions first, then the delimited input.
func BuildPrompt(instructionPrompt, inputText string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(instructionPrompt))
	sb.WriteString("\n\nInput text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")
	return sb.String()
}
