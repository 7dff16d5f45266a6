// Package output renders analysis outcomes and verdict history for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phishnix/phishnix/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Result pairs a submitted link with its analysis outcome.
type Result struct {
	Link    string               `json:"link"`
	Kind    core.RecordKind      `json:"kind"`
	Outcome core.AnalysisOutcome `json:"outcome"`
}

// Formatter renders analysis results.
type Formatter interface {
	FormatResults(results []*Result) (string, error)
	FormatRecords(records []core.VerdictRecord) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// FormatResultList renders analysis results using the requested format.
func FormatResultList(format Format, results []*Result) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	return NewFormatter(format).FormatResults(results)
}

// verdictLabel renders an outcome as a short status word.
func verdictLabel(outcome core.AnalysisOutcome) string {
	switch outcome.Kind {
	case core.OutcomeSuccess:
		if outcome.Verdict != nil && outcome.Verdict.IsSafe {
			return "safe"
		}
		return "unsafe"
	case core.OutcomeFieldError:
		return "invalid"
	default:
		return "error"
	}
}

// verdictNotes renders the outcome detail column.
func verdictNotes(outcome core.AnalysisOutcome) string {
	switch outcome.Kind {
	case core.OutcomeSuccess:
		if outcome.Verdict == nil {
			return ""
		}
		notes := outcome.Verdict.Reasoning
		if outcome.Verdict.DomainAgeIndication != "" {
			notes += " (domain age: " + outcome.Verdict.DomainAgeIndication + ")"
		}
		return notes
	case core.OutcomeFieldError:
		var parts []string
		for _, messages := range outcome.FieldErrors {
			parts = append(parts, messages...)
		}
		return strings.Join(parts, "; ")
	default:
		return outcome.Message
	}
}
