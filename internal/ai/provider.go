package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NoResponseText is returned when the model produced no candidate text.
const NoResponseText = "No response generated."

var ErrUnavailable = errors.New("ai provider unavailable")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Turn struct {
	Role Role
	Text string
}

type Request struct {
	Prompt  string
	History []Turn
}

type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, req Request) (string, error)
}

type IGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type generator struct {
	provider IProvider
	model    string
}

func NewGenerator(p IProvider, model string) IGenerator {
	return &generator{provider: p, model: model}
}

func (g *generator) Generate(ctx context.Context, req Request) (string, error) {
	return g.provider.Generate(ctx, g.model, req)
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}

func orNoResponse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoResponseText
	}
	return text
}
