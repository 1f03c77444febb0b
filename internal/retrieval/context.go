package retrieval

import (
	"encoding/json"

	"github.com/zero-day-ai/graphqa/internal/graph"
)

// Context is what a strategy hands to the answer stage: the serialized
// payload for the prompt and the structured records it was built from.
type Context struct {
	// Strategy is the name of the strategy that produced the context.
	Strategy string

	// Query is the statement that was run. For the cypher strategy this is
	// the generated query; vector strategies report their fixed statement.
	Query string

	// Generated reports whether Query came from the model.
	Generated bool

	// Text is the serialized payload placed into the prompt.
	Text string

	Format  Format
	Columns []string
	Records []*graph.Record
}

// FirstRecord returns the first retrieved record, or nil.
func (c *Context) FirstRecord() *graph.Record {
	if c == nil || len(c.Records) == 0 {
		return nil
	}
	return c.Records[0]
}

// FirstRecordJSON returns the first record as compact JSON, or "{}" when
// there is none.
func (c *Context) FirstRecordJSON() string {
	rec := c.FirstRecord()
	if rec == nil {
		return "{}"
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// GeneratedQuery returns the model-generated query, or "" when the
// strategy did not generate one.
func (c *Context) GeneratedQuery() string {
	if c == nil || !c.Generated {
		return ""
	}
	return c.Query
}

func newContext(strategy, query string, generated bool, format Format, res graph.QueryResult, limit int) (*Context, error) {
	records := graph.OrderedRecords(res)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	text, err := Serialize(records, format)
	if err != nil {
		return nil, err
	}

	return &Context{
		Strategy:  strategy,
		Query:     query,
		Generated: generated,
		Text:      text,
		Format:    format,
		Columns:   res.Columns,
		Records:   records,
	}, nil
}
