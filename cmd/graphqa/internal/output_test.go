package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

var sample = Answer{
	Strategy: "cypher",
	Question: "Which patients have diabetes?",
	Answer:   "P1 and P7.",
	Query:    "MATCH (p:Patient)-[:HAS_DISEASE]->(:Disease {name: 'Diabetes'}) RETURN p.id",
	Context:  `[{"p.id":"P1"},{"p.id":"P7"}]`,
	Attempts: 2,
	Elapsed:  1500 * time.Millisecond,
}

func TestTextFormatter_PrintAnswer(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf)

	require.NoError(t, f.PrintAnswer(sample, false))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[cypher]\nP1 and P7.\n"))
	assert.Contains(t, out, "Query:\n"+sample.Query)
	assert.NotContains(t, out, "Context:")
	assert.Contains(t, out, "(2 attempt(s), 1.5s)")

	buf.Reset()
	require.NoError(t, f.PrintAnswer(sample, true))
	assert.Contains(t, buf.String(), "Context:\n"+sample.Context)
}

func TestTextFormatter_PrintTurns(t *testing.T) {
	var buf bytes.Buffer
	f := NewTextFormatter(&buf)

	require.NoError(t, f.PrintTurns([]Turn{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}, "MATCH (n) RETURN n"))

	assert.Equal(t, "you> q1\nbot> a1\nyou> q2\nbot> a2\n\nlast query:\nMATCH (n) RETURN n\n", buf.String())
}

func TestTextFormatter_PrintComparison(t *testing.T) {
	var buf bytes.Buffer
	vec := sample
	vec.Strategy, vec.Query = "vector", ""

	require.NoError(t, NewTextFormatter(&buf).PrintComparison("Who?", []Answer{vec, sample}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Question: Who?\n"))
	assert.Less(t, strings.Index(out, "[vector]"), strings.Index(out, "[cypher]"))
	assert.Equal(t, 2, strings.Count(out, "Context:"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON, &buf)

	require.NoError(t, f.PrintAnswer(sample, false))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "P1 and P7.", got["answer"])
	assert.NotContains(t, got, "context")
	assert.EqualValues(t, 2, got["attempts"])

	buf.Reset()
	require.NoError(t, f.PrintError("boom"))
	assert.JSONEq(t, `{"status":"error","message":"boom"}`, buf.String())

	buf.Reset()
	require.NoError(t, f.PrintTurns(nil, ""))
	assert.JSONEq(t, `{"turns":null,"latest_query":""}`, buf.String())
}

func TestNewFormatter_DefaultsToText(t *testing.T) {
	_, ok := NewFormatter("yaml", nil).(*TextFormatter)
	assert.True(t, ok)
}
