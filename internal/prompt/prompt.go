package prompt

import (
	"strings"
)

// Prompt pairs a fixed system-instruction block with a user template.
type Prompt struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
	System      string `yaml:"system"`
	Template    string `yaml:"template"`

	compiled *Template
}

// New builds and validates a prompt.
func New(id, system, template string) (*Prompt, error) {
	p := &Prompt{ID: id, System: system, Template: template}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the prompt definition and compiles its template.
func (p *Prompt) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return NewInvalidPromptError("id is required")
	}
	t, err := NewTemplate(p.ID, p.Template)
	if err != nil {
		return err
	}
	if tokens := placeholderPattern.FindAllString(p.System, -1); len(tokens) > 0 {
		return NewUnresolvedPlaceholderError(p.ID+" (system)", tokens)
	}
	p.compiled = t
	return nil
}

// Variables returns the names the user template expects.
func (p *Prompt) Variables() []string {
	if p.compiled == nil {
		if err := p.Validate(); err != nil {
			return nil
		}
	}
	return p.compiled.Variables()
}

// Build renders the user template and returns it with the system block.
func (p *Prompt) Build(vars map[string]string) (system, user string, err error) {
	if p.compiled == nil {
		if err := p.Validate(); err != nil {
			return "", "", err
		}
	}
	user, err = p.compiled.Render(vars)
	if err != nil {
		return "", "", err
	}
	return p.System, user, nil
}
