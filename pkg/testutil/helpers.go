// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/decimath/internal/pipeline"
)

// FindResult finds a pipeline result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []pipeline.Result, name string) *pipeline.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindSummary is FindResult for rendered summaries.
func FindSummary(summaries []pipeline.Summary, name string) *pipeline.Summary {
	for i := range summaries {
		if summaries[i].Name == name {
			return &summaries[i]
		}
	}
	return nil
}
