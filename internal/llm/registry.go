package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// Registry holds the configured providers under their configuration names.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]LLMProvider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]LLMProvider),
	}
}

// Register adds a provider under name. Names must be unique.
func (r *Registry) Register(name string, provider LLMProvider) error {
	if provider == nil {
		return types.NewError(ErrInvalidRequest, "provider cannot be nil")
	}
	if name == "" {
		return types.NewError(ErrInvalidRequest, "provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return types.NewError(ErrInvalidRequest, fmt.Sprintf("provider %q already registered", name))
	}
	r.providers[name] = provider
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (LLMProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, NewProviderNotFoundError(name)
	}
	return provider, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve binds a slot to its registered provider.
func (r *Registry) Resolve(slot SlotConfig) (*Slot, error) {
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	provider, err := r.Get(slot.Provider)
	if err != nil {
		return nil, types.WrapError(ErrInvalidSlotConfig,
			fmt.Sprintf("slot provider %q is not configured", slot.Provider), err)
	}
	return &Slot{Provider: provider, Model: slot.Model}, nil
}

// Health probes every registered provider.
//   - Healthy: all providers are healthy
//   - Degraded: some providers are unhealthy
//   - Unhealthy: all providers are unhealthy or none are registered
func (r *Registry) Health(ctx context.Context) types.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.providers) == 0 {
		return types.Unhealthy("no providers registered")
	}

	healthy := 0
	for _, provider := range r.providers {
		if provider.Health(ctx).IsHealthy() {
			healthy++
		}
	}

	total := len(r.providers)
	switch healthy {
	case total:
		return types.Healthy(fmt.Sprintf("all %d providers healthy", total))
	case 0:
		return types.Unhealthy(fmt.Sprintf("all %d providers unhealthy", total))
	default:
		return types.Degraded(fmt.Sprintf("%d/%d providers healthy", healthy, total))
	}
}

// Slot is a provider bound to one model.
type Slot struct {
	Provider LLMProvider
	Model    string
}

// Generate calls the bound provider with the slot's model.
func (s *Slot) Generate(ctx context.Context, system string, messages []Message, params DecodingParams) (string, error) {
	return Generate(ctx, s.Provider, s.Model, system, messages, params)
}
