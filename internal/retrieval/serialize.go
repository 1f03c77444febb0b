package retrieval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/types"
	"gopkg.in/yaml.v3"
)

// Format is a context payload encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", types.NewError(ErrCodeInvalidConfig, fmt.Sprintf("unknown context format %q", s))
	}
}

// Serialize encodes records as a JSON array or a YAML sequence. Field order
// follows each record's insertion order and is never sorted, so the same
// records always produce byte-identical output. An empty record set
// serializes to "[]".
func Serialize(records []*graph.Record, format Format) (string, error) {
	if records == nil {
		records = []*graph.Record{}
	}

	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(records); err != nil {
			return "", types.WrapError(ErrCodeSerializationFailed, "failed to encode context as JSON", err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil

	case FormatYAML:
		if len(records) == 0 {
			return "[]", nil
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return "", types.WrapError(ErrCodeSerializationFailed, "failed to encode context as YAML", err)
		}
		if err := enc.Close(); err != nil {
			return "", types.WrapError(ErrCodeSerializationFailed, "failed to encode context as YAML", err)
		}
		return buf.String(), nil

	default:
		return "", types.NewError(ErrCodeSerializationFailed, fmt.Sprintf("unsupported context format %q", format))
	}
}
