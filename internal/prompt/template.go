package prompt

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// placeholderPattern matches a substitutable {name} placeholder.
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

	// loosePlaceholderPattern matches text that looks like a placeholder but
	// is not one, such as "{ input }". Map literals like "{bfs: false}" do
	// not match.
	loosePlaceholderPattern = regexp.MustCompile(`\{\s+[A-Za-z_][A-Za-z0-9_]*\s*\}|\{[A-Za-z_][A-Za-z0-9_]*\s+\}`)
)

// Template is a prompt text with {name} placeholders.
//
// Rendering is strict: every placeholder must have a value, and values are
// substituted in a single pass so text inside a value (for example a
// retrieved document containing "{context}") is never expanded again.
type Template struct {
	name      string
	text      string
	variables []string
}

// NewTemplate parses text and records its placeholders.
func NewTemplate(name, text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewInvalidTemplateError(name, "template text is empty")
	}
	if tokens := loosePlaceholderPattern.FindAllString(text, -1); len(tokens) > 0 {
		return nil, NewUnresolvedPlaceholderError(name, tokens)
	}

	seen := make(map[string]bool)
	var vars []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}

	return &Template{name: name, text: text, variables: vars}, nil
}

// MustTemplate is like NewTemplate but panics on error. Use it only for
// templates compiled into the binary.
func MustTemplate(name, text string) *Template {
	t, err := NewTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name used in error messages.
func (t *Template) Name() string {
	return t.name
}

// Text returns the raw template text.
func (t *Template) Text() string {
	return t.text
}

// Variables returns placeholder names in order of first appearance.
func (t *Template) Variables() []string {
	out := make([]string, len(t.variables))
	copy(out, t.variables)
	return out
}

// Render substitutes every placeholder. It fails with
// MISSING_REQUIRED_VARIABLE when any placeholder has no value; extra
// values are ignored.
func (t *Template) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, name := range t.variables {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", NewMissingVariableError(t.name, missing)
	}

	return placeholderPattern.ReplaceAllStringFunc(t.text, func(token string) string {
		return vars[token[1:len(token)-1]]
	}), nil
}
