// Package llmtest provides scripted LLM fakes for pipeline tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/resume-intake/internal/llm"
)

// Call records one request made to a fake.
type Call struct {
	Input       string
	Instruction string
	Prompt      string
	Tier        llm.ModelTier
}

// Reply is one scripted answer. OK=false simulates a failed or empty
// completion.
type Reply struct {
	Text string
	OK   bool
}

// Text is shorthand for a successful reply.
func Text(s string) Reply { return Reply{Text: s, OK: true} }

// Fail is shorthand for a failed reply.
func Fail() Reply { return Reply{} }

// Completer answers Complete calls from a fixed script, in order. Calls
// past the end of the script fail.
type Completer struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

// NewCompleter creates a Completer with the given script
func NewCompleter(replies ...Reply) *Completer {
	return &Completer{replies: replies}
}

var _ llm.Completer = (*Completer)(nil)

func (c *Completer) Complete(_ context.Context, inputText, instructionPrompt string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := len(c.calls)
	c.calls = append(c.calls, Call{Input: inputText, Instruction: instructionPrompt})
	if idx >= len(c.replies) {
		return "", false
	}
	r := c.replies[idx]
	return r.Text, r.OK
}

// Calls returns a copy of every call received so far
func (c *Completer) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Client is a scripted llm.Client. An empty Text with a nil Err is returned
// as-is so callers can exercise empty-completion handling.
type Client struct {
	mu      sync.Mutex
	Model   string
	Replies []ClientReply
	calls   []Call
	closed  bool
}

// ClientReply is one scripted GenerateContent result.
type ClientReply struct {
	Text string
	Err  error
}

// ErrScriptExhausted is returned once every scripted reply has been used.
var ErrScriptExhausted = errors.New("llmtest: script exhausted")

var _ llm.Client = (*Client)(nil)

func (c *Client) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := len(c.calls)
	c.calls = append(c.calls, Call{Prompt: prompt, Tier: tier})
	if idx >= len(c.Replies) {
		return "", ErrScriptExhausted
	}
	return c.Replies[idx].Text, c.Replies[idx].Err
}

func (c *Client) GetModel(llm.ModelTier) string {
	if c.Model == "" {
		return "scripted"
	}
	return c.Model
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Calls returns a copy of every call received so far
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Closed reports whether Close was called
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
