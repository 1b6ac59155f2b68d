package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/regmesh/core"
)

// Router dispatches chat calls to named provider clients. Model strings of
// the form "provider/model" select a provider explicitly; anything else
// goes to the default provider. Selection stays deliberately thin; smarter
// routing belongs to the caller configuring the registry.
type Router struct {
	mu        sync.RWMutex
	providers map[string]core.ChatClient
	fallback  string
}

// NewRouter creates an empty router. The first registered provider becomes
// the default unless SetDefault is called.
func NewRouter() *Router {
	return &Router{providers: make(map[string]core.ChatClient)}
}

// Register adds a named provider client.
func (r *Router) Register(name string, client core.ChatClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = client
	if r.fallback == "" {
		r.fallback = name
	}
}

// SetDefault selects the provider used for unprefixed model strings.
func (r *Router) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = name
}

// resolve picks the provider for a model string and strips the prefix.
func (r *Router) resolve(model string) (core.ChatClient, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := r.fallback
	if provider, rest, ok := strings.Cut(model, "/"); ok {
		if _, known := r.providers[provider]; known {
			name, model = provider, rest
		}
	}

	client, ok := r.providers[name]
	if !ok {
		return nil, "", fmt.Errorf("no provider registered for model %q", model)
	}
	return client, model, nil
}

// Chat implements core.ChatClient.
func (r *Router) Chat(ctx context.Context, messages []core.Message, opts core.ChatOptions) (string, error) {
	client, model, err := r.resolve(opts.Model)
	if err != nil {
		return "", err
	}
	opts.Model = model
	return client.Chat(ctx, messages, opts)
}

// StreamChat implements core.ChatClient.
func (r *Router) StreamChat(ctx context.Context, messages []core.Message, opts core.ChatOptions) (<-chan core.StreamEvent, error) {
	client, model, err := r.resolve(opts.Model)
	if err != nil {
		return nil, err
	}
	opts.Model = model
	return client.StreamChat(ctx, messages, opts)
}
