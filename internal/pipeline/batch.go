package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Batch is a YAML file holding several pipeline definitions:
//
//	pipelines:
//	  - name: invoice
//	    value: "100"
//	    steps: [add-percentage:21, round:2]
type Batch struct {
	Pipelines []Definition `yaml:"pipelines"`
}

// LoadBatch reads a batch file from path.
func LoadBatch(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ReadBatch(bytes.NewReader(data))
}

// ReadBatch decodes a batch from r. Unknown keys are rejected.
func ReadBatch(r io.Reader) ([]Definition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var batch Batch
	if err := decoder.Decode(&batch); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("batch file is empty")
		}
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if len(batch.Pipelines) == 0 {
		return nil, fmt.Errorf("batch file defines no pipelines")
	}
	for i, def := range batch.Pipelines {
		if def.Value == "" {
			return nil, fmt.Errorf("pipeline %d has no value", i+1)
		}
	}
	return batch.Pipelines, nil
}
