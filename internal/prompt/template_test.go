package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/types"
)

func TestNewTemplate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantVars []string
		wantCode types.ErrorCode
	}{
		{name: "two placeholders", text: "Q: {input}\nC: {context}", wantVars: []string{"input", "context"}},
		{name: "repeated placeholder", text: "{input} and {input}", wantVars: []string{"input"}},
		{name: "cypher map literal is not a placeholder", text: "CALL x(n, {bfs: false}) {question}", wantVars: []string{"question"}},
		{name: "no placeholders", text: "static text"},
		{name: "empty text", text: "  ", wantCode: ErrCodeInvalidTemplate},
		{name: "spaced placeholder", text: "Q: { input }", wantCode: ErrCodeUnresolvedPlaceholder},
		{name: "trailing space placeholder", text: "Q: {input }", wantCode: ErrCodeUnresolvedPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := NewTemplate("t", tt.text)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, types.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVars, tmpl.Variables())
		})
	}
}

func TestTemplate_Render(t *testing.T) {
	tmpl := MustTemplate("qa", "Question: {input}\nContext: {context}")

	out, err := tmpl.Render(map[string]string{"input": "who?", "context": "- a: 1", "extra": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Question: who?\nContext: - a: 1", out)
}

func TestTemplate_RenderMissingVariable(t *testing.T) {
	tmpl := MustTemplate("qa", "Question: {input}\nContext: {context}")

	_, err := tmpl.Render(map[string]string{})
	require.Error(t, err)
	assert.True(t, types.HasCode(err, ErrCodeMissingVariable))
	assert.Contains(t, err.Error(), "context, input")
}

func TestTemplate_RenderDoesNotExpandValues(t *testing.T) {
	tmpl := MustTemplate("qa", "{input}|{context}")

	out, err := tmpl.Render(map[string]string{"input": "{context}", "context": "ctx"})
	require.NoError(t, err)
	assert.Equal(t, "{context}|ctx", out)
}

func TestTemplate_EmptyValueIsAllowed(t *testing.T) {
	tmpl := MustTemplate("qa", "[{context}]")

	out, err := tmpl.Render(map[string]string{"context": ""})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestMustTemplate_Panics(t *testing.T) {
	assert.Panics(t, func() { MustTemplate("bad", "") })
}
