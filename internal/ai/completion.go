package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/advisor/internal/config"
)

// Completion is the text completion service used by the chat pipeline. It
// bounds every call with a timeout and trims history to the most recent turns.
type Completion struct {
	gen             IGenerator
	timeout         time.Duration
	historyMessages int
}

func NewCompletion(gen IGenerator, timeout time.Duration, historyMessages int) *Completion {
	return &Completion{gen: gen, timeout: timeout, historyMessages: historyMessages}
}

// NewCompletionFromConfig builds the primary provider and any fallbacks.
func NewCompletionFromConfig(cfg config.AIConfig) (*Completion, error) {
	all := append([]config.AIProviderConfig{cfg.AIProviderConfig}, cfg.Fallbacks...)
	entries := make([]GeneratorEntry, 0, len(all))
	for _, item := range all {
		provider, err := NewProvider(item.Provider, item.Data)
		if err != nil {
			return nil, fmt.Errorf("init ai provider %s: %w", item.Provider, err)
		}
		entries = append(entries, GeneratorEntry{
			Name:      provider.Name() + ":" + item.Model,
			Generator: NewGenerator(provider, item.Model),
		})
	}
	return NewCompletion(NewGroupGenerator(entries), time.Duration(cfg.Timeout)*time.Second, cfg.HistoryMessages), nil
}

func (c *Completion) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	if c.gen == nil {
		return "", ErrUnavailable
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.historyMessages > 0 && len(history) > c.historyMessages {
		history = history[len(history)-c.historyMessages:]
	}
	return c.gen.Generate(ctx, Request{Prompt: prompt, History: history})
}
