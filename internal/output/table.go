package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/phishnix/phishnix/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatResults renders analysis results as a table.
func (f *TableFormatter) FormatResults(results []*Result) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Kind", "Link", "Verdict", "Notes"})

	safe := 0
	analyzed := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		t.AppendRow(table.Row{
			string(r.Kind),
			r.Link,
			verdictLabel(r.Outcome),
			verdictNotes(r.Outcome),
		})
		if r.Outcome.Kind == core.OutcomeSuccess {
			analyzed++
			if r.Outcome.Verdict != nil && r.Outcome.Verdict.IsSafe {
				safe++
			}
		}
	}

	if analyzed > 0 {
		t.AppendFooter(table.Row{
			"",
			"",
			fmt.Sprintf("%d/%d safe", safe, analyzed),
			"",
		})
	}

	return t.Render(), nil
}

// FormatRecords renders verdict history as a table.
func (f *TableFormatter) FormatRecords(records []core.VerdictRecord) (string, error) {
	if len(records) == 0 {
		return "No verdict records found.", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"When", "Kind", "Link", "Verdict", "Reasoning"})

	for _, record := range records {
		label := "unsafe"
		if record.Verdict.IsSafe {
			label = "safe"
		}
		t.AppendRow(table.Row{
			record.CreatedAt.Format("2006-01-02 15:04"),
			string(record.Kind),
			record.SourceLink,
			label,
			record.Verdict.Reasoning,
		})
	}

	return t.Render(), nil
}
