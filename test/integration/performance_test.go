package integration

import (
	"testing"
	"time"

	"github.com/iwvelando/decimath/internal/config"
	"github.com/iwvelando/decimath/internal/pipeline"
	"go.uber.org/zap"
)

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	mathConfig, err := conf.ScaledConfig()
	if err != nil {
		t.Fatalf("ScaledConfig failed: %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	defs, err := pipeline.LoadBatch("../test_batch.yaml")
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	parseTime := time.Since(start)

	start = time.Now()
	evaluator := pipeline.NewEvaluator(logger, mathConfig)
	for i := 0; i < 1000; i++ {
		if _, err := evaluator.EvaluateAll(defs); err != nil {
			t.Fatalf("EvaluateAll failed on iteration %d: %v", i, err)
		}
	}
	evalTime := time.Since(start)

	totalTime := loadTime + parseTime + evalTime

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  Parse batch: %v", parseTime)
	t.Logf("  Evaluate 1000 batches: %v", evalTime)
	t.Logf("  Total time: %v", totalTime)

	if totalTime > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", totalTime)
	}
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	var first []string

	for run := 0; run < 3; run++ {
		_, results := loadFixtures(t)

		values := make([]string, 0, len(results))
		for _, result := range results {
			values = append(values, result.Value.ToNumber().String())
		}

		if run == 0 {
			first = values
			continue
		}

		if len(values) != len(first) {
			t.Fatalf("Run %d: got %d results, expected %d", run, len(values), len(first))
		}
		for i := range values {
			if values[i] != first[i] {
				t.Errorf("Run %d, pipeline %d: %s != %s", run, i, values[i], first[i])
			}
		}
	}
}

func BenchmarkEvaluateBatch(b *testing.B) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		b.Fatalf("LoadConfiguration failed: %v", err)
	}
	mathConfig, err := conf.ScaledConfig()
	if err != nil {
		b.Fatalf("ScaledConfig failed: %v", err)
	}
	defs, err := pipeline.LoadBatch("../test_batch.yaml")
	if err != nil {
		b.Fatalf("LoadBatch failed: %v", err)
	}

	evaluator := pipeline.NewEvaluator(zap.NewNop(), mathConfig)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := evaluator.EvaluateAll(defs); err != nil {
			b.Fatal(err)
		}
	}
}
