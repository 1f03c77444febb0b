package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/types"
)

func TestExtractQuery(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "untagged fence",
			response: "Here is the query:\n```\nMATCH (p:Patient)-[:HAS_DISEASE]->(d:Disease)\nRETURN d.name, count(p)\n```",
			want:     "MATCH (p:Patient)-[:HAS_DISEASE]->(d:Disease)\nRETURN d.name, count(p)",
		},
		{
			name:     "cypher tagged fence",
			response: "```cypher\nMATCH (n) RETURN count(n)\n```",
			want:     "MATCH (n) RETURN count(n)",
		},
		{
			name:     "single line fence",
			response: "```MATCH (n) RETURN n LIMIT 1```",
			want:     "MATCH (n) RETURN n LIMIT 1",
		},
		{
			name:     "cypher tag on the statement line",
			response: "```cypher MATCH (p:Patient) RETURN p```",
			want:     "MATCH (p:Patient) RETURN p",
		},
		{
			name:     "optional match",
			response: "```\nOPTIONAL MATCH (p:Patient) RETURN p\n```",
			want:     "OPTIONAL MATCH (p:Patient) RETURN p",
		},
		{
			name:     "skips blocks in other languages",
			response: "```json\n{\"a\":1}\n```\n```\nMATCH (m:Manager) RETURN m.managerName\n```",
			want:     "MATCH (m:Manager) RETURN m.managerName",
		},
		{
			name:     "bare statement",
			response: "  MATCH (c:Company) RETURN c.companyName LIMIT 10 ",
			want:     "MATCH (c:Company) RETURN c.companyName LIMIT 10",
		},
		{
			name:     "bare call",
			response: "CALL db.labels()",
			want:     "CALL db.labels()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractQuery(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractQuery_NoQuery(t *testing.T) {
	for _, response := range []string{
		"",
		"I don't know how to answer that.",
		"```\n\n```",
		"```python\nprint('hi')\n```",
		"```sql SELECT * FROM patients```",
		"```The answer is Diabetes.```",
	} {
		_, err := ExtractQuery(response)
		assert.True(t, types.HasCode(err, ErrNoQueryFound), "response %q", response)
	}
}
