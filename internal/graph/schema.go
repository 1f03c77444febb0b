package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zero-day-ai/graphqa/internal/types"
)

const (
	nodePropertiesCypher = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
RETURN nodeLabels, propertyName, propertyTypes`

	relPropertiesCypher = `CALL db.schema.relTypeProperties()
YIELD relType, propertyName, propertyTypes
RETURN relType, propertyName, propertyTypes`

	relPatternsCypher = `MATCH (a)-[r]->(b)
WITH DISTINCT labels(a) AS from, type(r) AS rel, labels(b) AS to
RETURN from, rel, to
LIMIT 500`
)

// DescribeSchema renders the node labels, relationship types and their
// properties as the plain-text schema block used by query translation.
// Output is sorted so the same graph always yields the same text.
func DescribeSchema(ctx context.Context, client GraphClient) (string, error) {
	nodeRes, err := client.Query(ctx, nodePropertiesCypher, nil)
	if err != nil {
		return "", types.WrapError(ErrCodeGraphSchemaFailed, "failed to read node properties", err)
	}
	relRes, err := client.Query(ctx, relPropertiesCypher, nil)
	if err != nil {
		return "", types.WrapError(ErrCodeGraphSchemaFailed, "failed to read relationship properties", err)
	}
	patRes, err := client.Query(ctx, relPatternsCypher, nil)
	if err != nil {
		return "", types.WrapError(ErrCodeGraphSchemaFailed, "failed to read relationship patterns", err)
	}

	nodes := collectProperties(nodeRes, func(rec map[string]any) string {
		return strings.Join(stringList(rec["nodeLabels"]), ":")
	})
	rels := collectProperties(relRes, func(rec map[string]any) string {
		// relType comes back as ":`TYPE`"
		return strings.Trim(strings.TrimPrefix(asString(rec["relType"]), ":"), "`")
	})

	patterns := make([]string, 0, len(patRes.Records))
	seen := make(map[string]bool)
	for _, rec := range patRes.Records {
		from := stringList(rec["from"])
		to := stringList(rec["to"])
		rel := asString(rec["rel"])
		if len(from) == 0 || len(to) == 0 || rel == "" {
			continue
		}
		p := fmt.Sprintf("(:%s)-[:%s]->(:%s)", from[0], rel, to[0])
		if !seen[p] {
			seen[p] = true
			patterns = append(patterns, p)
		}
	}
	sort.Strings(patterns)

	var b strings.Builder
	b.WriteString("Node properties are the following:\n")
	writeProperties(&b, nodes)
	b.WriteString("Relationship properties are the following:\n")
	writeProperties(&b, rels)
	b.WriteString("The relationships are the following:\n")
	for _, p := range patterns {
		b.WriteString(p)
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// collectProperties groups "name: TYPE" entries by the key returned from keyFn.
func collectProperties(res QueryResult, keyFn func(map[string]any) string) map[string][]string {
	out := make(map[string][]string)
	for _, rec := range res.Records {
		key := keyFn(rec)
		if key == "" {
			continue
		}
		if _, ok := out[key]; !ok {
			out[key] = []string{}
		}
		name := asString(rec["propertyName"])
		if name == "" {
			continue
		}
		kind := strings.ToUpper(strings.Join(stringList(rec["propertyTypes"]), "|"))
		out[key] = append(out[key], fmt.Sprintf("%s: %s", name, kind))
	}
	return out
}

func writeProperties(b *strings.Builder, props map[string][]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields := props[k]
		sort.Strings(fields)
		fmt.Fprintf(b, "%s {%s}\n", k, strings.Join(fields, ", "))
	}
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
