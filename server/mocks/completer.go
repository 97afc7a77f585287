package mocks

import (
	"context"
	"sync"
)

// Completer is a provider.Completer that records every prompt it receives.
// Respond decides the answer; when nil the Reply field is returned.
type Completer struct {
	Respond func(ctx context.Context, prompt string) (string, error)
	Reply   string

	mu      sync.Mutex
	prompts []string
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.Respond != nil {
		return c.Respond(ctx, prompt)
	}
	return c.Reply, nil
}

// Prompts returns a copy of the prompts seen so far.
func (c *Completer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Calls returns the number of Complete calls.
func (c *Completer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}
