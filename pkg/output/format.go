// Package output provides utilities for formatting and displaying pipeline results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/decimath/internal/pipeline"
	"github.com/iwvelando/decimath/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func displayName(summary pipeline.Summary, index int) string {
	if summary.Name != "" {
		return summary.Name
	}
	return fmt.Sprintf("#%d", index+1)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, summaries []pipeline.Summary) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	for i, summary := range summaries {
		fmt.Fprintf(&b, "--- Results for pipeline %s ---\n", displayName(summary, i))
		if len(summary.Steps) > 0 {
			width := len("Step")
			for _, step := range summary.Steps {
				if len(step.Step) > width {
					width = len(step.Step)
				}
			}
			fmt.Fprintf(&b, "%-*s | Value\n", width, "Step")
			fmt.Fprintf(&b, "%-*s | _____\n", width, "____")
			for _, step := range summary.Steps {
				fmt.Fprintf(&b, "%-*s | %s\n", width, step.Step, step.Value)
			}
		}

		storage := summary.Storage
		if n, err := strconv.ParseInt(storage, 10, 64); err == nil {
			storage = p.Sprintf("%d", n)
		}
		fmt.Fprintf(&b, "Result: %s (float %s, storage %s)\n",
			format.Grouped(summary.Value, ",", "."),
			strconv.FormatFloat(summary.Float, 'f', -1, 64),
			storage)
		if i < len(summaries)-1 {
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs in comma-separated value format, one row per pipeline.
// Intermediate values are joined with semicolons.
func CsvFormat(w io.Writer, summaries []pipeline.Summary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "value", "float", "storage", "steps"}); err != nil {
		return err
	}
	for i, summary := range summaries {
		steps := make([]string, 0, len(summary.Steps))
		for _, step := range summary.Steps {
			steps = append(steps, step.Step+"="+step.Value)
		}
		record := []string{
			displayName(summary, i),
			summary.Value,
			strconv.FormatFloat(summary.Float, 'f', -1, 64),
			summary.Storage,
			strings.Join(steps, ";"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// CsvString returns CsvFormat output as a string.
func CsvString(summaries []pipeline.Summary) (string, error) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, summaries); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// JSONFormat outputs the summaries as an indented JSON array.
func JSONFormat(w io.Writer, summaries []pipeline.Summary) error {
	if summaries == nil {
		summaries = []pipeline.Summary{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summaries)
}
