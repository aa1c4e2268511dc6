package sqlcast

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/iwvelando/decimath/pkg/scaled"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// Every pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE amounts (id INTEGER PRIMARY KEY, amount TEXT, stored INTEGER)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func TestColumnsRoundTrip(t *testing.T) {
	conf := scaled.Config{Scale: 2, StorageScale: 10, RoundingMode: scaled.Down}

	tests := []struct {
		name          string
		value         string
		expectedText  string
		expectedInt   int64
		expectedFloat float64
	}{
		{"Truncated", "100.123456", "100.12", 1001200000000, 100.12},
		{"Negative", "-5.129", "-5.12", -51200000000, -5.12},
		{"Whole", "42", "42.00", 420000000000, 42},
		{"Zero", "0", "0.00", 0, 0},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openDB(t)
			value, err := conf.Of(tt.value)
			if err != nil {
				t.Fatalf("Of(%s) unexpected error = %v", tt.value, err)
			}

			_, err = db.Exec(`INSERT INTO amounts (id, amount, stored) VALUES (?, ?, ?)`,
				i, NewFloatScale(value), NewStorageInt(value))
			if err != nil {
				t.Fatalf("insert failed: %v", err)
			}

			var rawText string
			var rawInt int64
			if err := db.QueryRow(`SELECT amount, stored FROM amounts WHERE id = ?`, i).Scan(&rawText, &rawInt); err != nil {
				t.Fatalf("raw select failed: %v", err)
			}
			if rawText != tt.expectedText {
				t.Errorf("stored text = %s, expected %s", rawText, tt.expectedText)
			}
			if rawInt != tt.expectedInt {
				t.Errorf("stored integer = %d, expected %d", rawInt, tt.expectedInt)
			}

			amount := FloatScaleColumn(conf)
			stored := StorageIntColumn(conf)
			if err := db.QueryRow(`SELECT amount, stored FROM amounts WHERE id = ?`, i).Scan(amount, stored); err != nil {
				t.Fatalf("select failed: %v", err)
			}
			if !amount.Valid || !stored.Valid {
				t.Fatalf("expected valid columns, got amount=%v stored=%v", amount.Valid, stored.Valid)
			}

			f, err := amount.Decimal.ToFloat()
			if err != nil {
				t.Fatalf("ToFloat() unexpected error = %v", err)
			}
			if f != tt.expectedFloat {
				t.Errorf("float scale column = %v, expected %v", f, tt.expectedFloat)
			}
			if s, _ := stored.Decimal.ToString(); s != tt.expectedText {
				t.Errorf("storage column = %s, expected %s", s, tt.expectedText)
			}
			if stored.Decimal.Config() != conf {
				t.Errorf("storage column config = %+v, expected %+v", stored.Decimal.Config(), conf)
			}
		})
	}
}

func TestColumnsNull(t *testing.T) {
	db := openDB(t)
	if _, err := db.Exec(`INSERT INTO amounts (id, amount, stored) VALUES (1, ?, ?)`, FloatScale{}, StorageInt{}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	conf := scaled.DefaultConfig()
	amount := FloatScaleColumn(conf)
	stored := StorageIntColumn(conf)
	if err := db.QueryRow(`SELECT amount, stored FROM amounts WHERE id = 1`).Scan(amount, stored); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if amount.Valid {
		t.Errorf("amount.Valid = true for NULL column")
	}
	if stored.Valid {
		t.Errorf("stored.Valid = true for NULL column")
	}
}

func TestScanDriverTypes(t *testing.T) {
	conf := scaled.Config{Scale: 2, StorageScale: 4, RoundingMode: scaled.HalfUp}

	tests := []struct {
		name     string
		src      any
		expected string
	}{
		{"Bytes", []byte("1.255"), "1.26"},
		{"String", "1.254", "1.25"},
		{"Integer", int64(3), "3.00"},
		{"Float", 2.5, "2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column := FloatScaleColumn(conf)
			if err := column.Scan(tt.src); err != nil {
				t.Fatalf("Scan(%v) unexpected error = %v", tt.src, err)
			}
			if s, _ := column.Decimal.ToString(); s != tt.expected {
				t.Errorf("Scan(%v) = %s, expected %s", tt.src, s, tt.expected)
			}
		})
	}

	column := StorageIntColumn(conf)
	if err := column.Scan(int64(12345)); err != nil {
		t.Fatalf("Scan(12345) unexpected error = %v", err)
	}
	if s, _ := column.Decimal.ToString(); s != "1.23" {
		t.Errorf("storage Scan(12345) = %s, expected 1.23", s)
	}

	if err := FloatScaleColumn(conf).Scan(true); !errors.Is(err, scaled.ErrNumberFormat) {
		t.Errorf("Scan(true) error = %v, expected ErrNumberFormat", err)
	}
	if err := StorageIntColumn(conf).Scan("abc"); !errors.Is(err, scaled.ErrNumberFormat) {
		t.Errorf("Scan(abc) error = %v, expected ErrNumberFormat", err)
	}
}

func TestValueErrors(t *testing.T) {
	inexact := scaled.MustOf("1.234", scaled.WithRoundingMode(scaled.Unnecessary))
	if _, err := NewFloatScale(inexact).Value(); !errors.Is(err, scaled.ErrRoundingRequired) {
		t.Errorf("FloatScale.Value() error = %v, expected ErrRoundingRequired", err)
	}

	huge := scaled.MustOf("1000000000")
	if _, err := NewStorageInt(huge).Value(); !errors.Is(err, scaled.ErrOverflow) {
		t.Errorf("StorageInt.Value() error = %v, expected ErrOverflow", err)
	}
}
