package output

import (
	"fmt"
	"strings"

	"github.com/phishnix/phishnix/internal/core"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatResults renders analysis results as Markdown.
func (f *MarkdownFormatter) FormatResults(results []*Result) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Link safety analysis\n\n")
	sb.WriteString("| Kind | Link | Verdict | Notes |\n")
	sb.WriteString("|------|------|---------|-------|\n")

	for _, r := range results {
		if r == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(string(r.Kind)),
			escapeMarkdownCell(r.Link),
			escapeMarkdownCell(verdictLabel(r.Outcome)),
			escapeMarkdownCell(verdictNotes(r.Outcome)),
		))
	}

	return sb.String(), nil
}

// FormatRecords renders verdict history as Markdown.
func (f *MarkdownFormatter) FormatRecords(records []core.VerdictRecord) (string, error) {
	if len(records) == 0 {
		return "No verdict records found.", nil
	}

	var sb strings.Builder
	sb.WriteString("## Verdict history\n\n")
	sb.WriteString("| When | Kind | Link | Verdict | Reasoning |\n")
	sb.WriteString("|------|------|------|---------|-----------|\n")

	for _, record := range records {
		label := "unsafe"
		if record.Verdict.IsSafe {
			label = "safe"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			record.CreatedAt.Format("2006-01-02 15:04"),
			escapeMarkdownCell(string(record.Kind)),
			escapeMarkdownCell(record.SourceLink),
			label,
			escapeMarkdownCell(record.Verdict.Reasoning),
		))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
