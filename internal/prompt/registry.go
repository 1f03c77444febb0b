package prompt

import (
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry holds prompts by ID. It starts with the built-in prompts;
// prompts loaded from YAML replace built-ins with the same ID.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*Prompt
}

// NewRegistry returns a registry seeded with the built-in prompts.
func NewRegistry() *Registry {
	r := &Registry{prompts: make(map[string]*Prompt)}
	for _, p := range builtinPrompts() {
		r.prompts[p.ID] = p
	}
	return r
}

// Register adds a prompt. Returns PROMPT_ALREADY_EXISTS unless replace is set.
func (r *Registry) Register(p *Prompt, replace bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prompts[p.ID]; exists && !replace {
		return NewPromptAlreadyExistsError(p.ID)
	}
	r.prompts[p.ID] = p
	return nil
}

// Get retrieves a prompt by ID.
func (r *Registry) Get(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prompts[id]
	if !ok {
		return nil, NewPromptNotFoundError(id)
	}
	return p, nil
}

// IDs returns the registered prompt IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RegisterFromYAML loads prompts from a YAML file, replacing any prompt
// with the same ID. The file holds either a single prompt or a list.
func (r *Registry) RegisterFromYAML(path string) error {
	prompts, err := LoadPromptsFromFile(path)
	if err != nil {
		return err
	}
	for _, p := range prompts {
		if err := r.Register(p, true); err != nil {
			return err
		}
	}
	return nil
}

// LoadPromptsFromFile parses a YAML prompt file.
func LoadPromptsFromFile(path string) ([]*Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewYAMLParseError(path, err)
	}

	var list []*Prompt
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single Prompt
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, NewYAMLParseError(path, err)
	}
	return []*Prompt{&single}, nil
}
