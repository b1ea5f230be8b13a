package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedClient spaces calls to the wrapped client to stay under a
// requests-per-minute budget. It never retries.
type RateLimitedClient struct {
	Client
	limiter *rate.Limiter
}

// NewRateLimitedClient wraps client with a token bucket of qpm requests per
// minute and a burst of half that (at least one).
func NewRateLimitedClient(client Client, qpm int) *RateLimitedClient {
	burst := max(qpm/2, 1)
	return &RateLimitedClient{
		Client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(qpm, 1))), burst),
	}
}

// GenerateContent waits for a token, then delegates
func (c *RateLimitedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &APICallError{Message: "rate limiter wait aborted", Cause: err}
	}
	return c.Client.GenerateContent(ctx, prompt, tier)
}
