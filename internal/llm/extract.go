package llm

import (
	"regexp"
	"strings"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// codeBlockPattern matches fenced blocks. The language tag only counts when
// it sits alone on the opening line, so "```MATCH (n) RETURN n```" is read
// as content.
// Captures: (1) optional language, (2) content
var codeBlockPattern = regexp.MustCompile("(?s)```(?:([A-Za-z]+)[ \\t]*\\n)?(.*?)```")

// readClause matches the clauses a read statement can start with.
var readClause = regexp.MustCompile(`(?i)^(?:OPTIONAL\s+MATCH|MATCH|WITH|CALL|UNWIND|RETURN)\b`)

// inlineTag matches a "cypher" tag that shares its line with the statement.
var inlineTag = regexp.MustCompile(`(?i)^cypher\s+`)

// ExtractQuery pulls a Cypher statement out of a translation response.
// Priority:
//  1. The first fenced block that is untagged or tagged "cypher" and
//     holds a read statement
//  2. The whole response, when it begins with a read clause
//
// An empty or missing statement fails with ErrNoQueryFound.
func ExtractQuery(response string) (string, error) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "cypher" {
			continue
		}
		q := strings.TrimSpace(match[2])
		if lang == "" {
			q = inlineTag.ReplaceAllString(q, "")
		}
		if readClause.MatchString(q) {
			return q, nil
		}
	}

	trimmed := strings.TrimSpace(response)
	if readClause.MatchString(trimmed) {
		return trimmed, nil
	}

	return "", types.NewError(ErrNoQueryFound, "no query statement found in model response")
}
