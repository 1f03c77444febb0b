package graph

import (
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is a single row with its fields in column order.
type Record = orderedmap.OrderedMap[string, any]

// OrderedRecord returns the row as an ordered map following columns. Values
// are passed through NormalizeValue. Columns missing from the row are emitted
// as nil so every record of a result has the same shape.
func OrderedRecord(columns []string, row map[string]any) *Record {
	rec := orderedmap.New[string, any]()
	for _, col := range columns {
		rec.Set(col, NormalizeValue(row[col]))
	}
	return rec
}

// OrderedRecords converts every record of r.
func OrderedRecords(r QueryResult) []*Record {
	out := make([]*Record, 0, len(r.Records))
	for _, row := range r.Records {
		out = append(out, OrderedRecord(r.Columns, row))
	}
	return out
}

// NormalizeValue turns driver values into plain data that serializes the same
// way every time. Graph entities become ordered maps whose property keys are
// sorted, temporal values become ISO-8601 strings, and nested lists and maps
// are normalized recursively.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case dbtype.Node:
		return normalizeNode(val)
	case dbtype.Relationship:
		return normalizeRelationship(val)
	case dbtype.Path:
		nodes := make([]any, 0, len(val.Nodes))
		for _, n := range val.Nodes {
			nodes = append(nodes, normalizeNode(n))
		}
		rels := make([]any, 0, len(val.Relationships))
		for _, r := range val.Relationships {
			rels = append(rels, normalizeRelationship(r))
		}
		p := orderedmap.New[string, any]()
		p.Set("nodes", nodes)
		p.Set("relationships", rels)
		return p
	case dbtype.Date:
		return val.Time().Format("2006-01-02")
	case dbtype.LocalDateTime:
		return val.Time().Format("2006-01-02T15:04:05.999999999")
	case dbtype.LocalTime:
		return val.Time().Format("15:04:05.999999999")
	case dbtype.Time:
		return val.Time().Format("15:04:05.999999999Z07:00")
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case dbtype.Duration:
		return val.String()
	case dbtype.Point2D:
		return val.String()
	case dbtype.Point3D:
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	case map[string]any:
		return sortedMap(val)
	default:
		return val
	}
}

func normalizeNode(n dbtype.Node) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any]()
	m.Set("_id", n.ElementId)
	labels := append([]string(nil), n.Labels...)
	sort.Strings(labels)
	m.Set("_labels", labels)
	appendSorted(m, n.Props)
	return m
}

func normalizeRelationship(r dbtype.Relationship) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any]()
	m.Set("_type", r.Type)
	m.Set("_start", r.StartElementId)
	m.Set("_end", r.EndElementId)
	appendSorted(m, r.Props)
	return m
}

func sortedMap(src map[string]any) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any]()
	appendSorted(m, src)
	return m
}

func appendSorted(dst *orderedmap.OrderedMap[string, any], src map[string]any) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dst.Set(k, NormalizeValue(src[k]))
	}
}
