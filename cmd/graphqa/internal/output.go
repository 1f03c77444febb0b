package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatText is human-readable text output
	FormatText OutputFormat = "text"
	// FormatJSON is structured JSON output
	FormatJSON OutputFormat = "json"
)

// Answer is one answered question as shown to the user.
type Answer struct {
	Strategy string        `json:"strategy"`
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Query    string        `json:"query,omitempty"`
	Context  string        `json:"context,omitempty"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Turn is one recorded conversation exchange.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Query    string `json:"query,omitempty"`
}

// Formatter defines methods for formatting command output
type Formatter interface {
	// PrintAnswer prints a single answer. showContext includes the
	// retrieved context payload.
	PrintAnswer(a Answer, showContext bool) error
	// PrintComparison prints answers to the same question side by side.
	PrintComparison(question string, answers []Answer) error
	// PrintTurns prints recent exchanges followed by the latest query.
	PrintTurns(turns []Turn, latestQuery string) error
	// PrintText prints a block of plain text such as a schema.
	PrintText(title, body string) error
	// PrintError prints an error message
	PrintError(message string) error
	// PrintJSON prints arbitrary data as JSON
	PrintJSON(data any) error
}

// NewFormatter returns the formatter for format.
func NewFormatter(format OutputFormat, w io.Writer) Formatter {
	if format == FormatJSON {
		return NewJSONFormatter(w)
	}
	return NewTextFormatter(w)
}

// TextFormatter implements Formatter for human-readable text output
type TextFormatter struct {
	writer  io.Writer
	heading *color.Color
	label   *color.Color
	errc    *color.Color
	dim     *color.Color
}

// NewTextFormatter creates a new TextFormatter writing to the given writer.
// Colors follow color.NoColor, which is set when stdout is not a terminal.
func NewTextFormatter(w io.Writer) *TextFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &TextFormatter{
		writer:  w,
		heading: color.New(color.FgCyan, color.Bold),
		label:   color.New(color.Bold),
		errc:    color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
}

func (f *TextFormatter) PrintAnswer(a Answer, showContext bool) error {
	if _, err := f.heading.Fprintf(f.writer, "[%s]\n", a.Strategy); err != nil {
		return err
	}
	fmt.Fprintln(f.writer, a.Answer)
	if a.Query != "" {
		f.label.Fprintln(f.writer, "\nQuery:")
		fmt.Fprintln(f.writer, a.Query)
	}
	if showContext && a.Context != "" {
		f.label.Fprintln(f.writer, "\nContext:")
		fmt.Fprintln(f.writer, strings.TrimRight(a.Context, "\n"))
	}
	_, err := f.dim.Fprintf(f.writer, "(%d attempt(s), %s)\n", a.Attempts, a.Elapsed.Round(time.Millisecond))
	return err
}

func (f *TextFormatter) PrintComparison(question string, answers []Answer) error {
	if _, err := f.label.Fprintf(f.writer, "Question: %s\n", question); err != nil {
		return err
	}
	for _, a := range answers {
		fmt.Fprintln(f.writer, strings.Repeat("-", 60))
		if err := f.PrintAnswer(a, true); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) PrintTurns(turns []Turn, latestQuery string) error {
	for _, t := range turns {
		if _, err := f.label.Fprintf(f.writer, "you> %s\n", t.Question); err != nil {
			return err
		}
		fmt.Fprintf(f.writer, "bot> %s\n", t.Answer)
	}
	if latestQuery != "" {
		f.dim.Fprintf(f.writer, "\nlast query:\n%s\n", latestQuery)
	}
	return nil
}

func (f *TextFormatter) PrintText(title, body string) error {
	if title != "" {
		if _, err := f.heading.Fprintln(f.writer, title); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(f.writer, body)
	return err
}

// PrintError prints an error message with an X prefix
func (f *TextFormatter) PrintError(message string) error {
	_, err := f.errc.Fprintf(f.writer, "✗ %s\n", message)
	return err
}

// PrintJSON prints data as formatted JSON (for text output with JSON content)
func (f *TextFormatter) PrintJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// JSONFormatter implements Formatter for structured JSON output
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSONFormatter writing to the given writer
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

func (f *JSONFormatter) PrintAnswer(a Answer, showContext bool) error {
	if !showContext {
		a.Context = ""
	}
	return f.PrintJSON(a)
}

func (f *JSONFormatter) PrintComparison(question string, answers []Answer) error {
	return f.PrintJSON(map[string]any{
		"question": question,
		"answers":  answers,
	})
}

func (f *JSONFormatter) PrintTurns(turns []Turn, latestQuery string) error {
	return f.PrintJSON(map[string]any{
		"turns":        turns,
		"latest_query": latestQuery,
	})
}

func (f *JSONFormatter) PrintText(title, body string) error {
	return f.PrintJSON(map[string]string{
		"title": title,
		"text":  body,
	})
}

// PrintError prints an error message as JSON
func (f *JSONFormatter) PrintError(message string) error {
	return f.PrintJSON(map[string]any{
		"status":  "error",
		"message": message,
	})
}

// PrintJSON prints data as compact JSON, one document per line.
func (f *JSONFormatter) PrintJSON(data any) error {
	return json.NewEncoder(f.writer).Encode(data)
}
