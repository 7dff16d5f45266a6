package output

import (
	"encoding/json"

	"github.com/phishnix/phishnix/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatResults renders analysis results as JSON.
func (f *JSONFormatter) FormatResults(results []*Result) (string, error) {
	return f.marshal(results)
}

// FormatRecords renders verdict history as JSON.
func (f *JSONFormatter) FormatRecords(records []core.VerdictRecord) (string, error) {
	return f.marshal(records)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
