package scaled

import "testing"

// checked returns a function that unwraps (Decimal, error) pairs, failing
// the test on error. It lets chained calls stay on one line:
//
//	ok := checked(t)
//	got := ok(ok(base.Sum(3)).Divide(2))
func checked(t *testing.T) func(Decimal, error) Decimal {
	t.Helper()
	return func(d Decimal, err error) Decimal {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return d
	}
}

func mustString(t *testing.T, d Decimal) string {
	t.Helper()
	s, err := d.ToString()
	if err != nil {
		t.Fatalf("ToString() error = %v", err)
	}
	return s
}

func mustFloat(t *testing.T, d Decimal) float64 {
	t.Helper()
	f, err := d.ToFloat()
	if err != nil {
		t.Fatalf("ToFloat() error = %v", err)
	}
	return f
}
