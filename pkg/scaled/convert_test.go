package scaled

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/cockroachdb/apd/v3"
	gvdecimal "github.com/govalues/decimal"
	"github.com/shopspring/decimal"
)

func TestOfAcceptedTypes(t *testing.T) {
	shop := decimal.RequireFromString("1.5")
	wrapped := MustOf("1.5")

	tests := []struct {
		name  string
		input any
	}{
		{"string", "1.5"},
		{"float64", 1.5},
		{"float32", float32(1.5)},
		{"json.Number", json.Number("1.5")},
		{"shopspring decimal", shop},
		{"shopspring pointer", &shop},
		{"apd decimal", *apd.New(15, -1)},
		{"apd pointer", apd.New(15, -1)},
		{"govalues decimal", gvdecimal.MustParse("1.5")},
		{"scaled decimal", wrapped},
		{"scaled pointer", &wrapped},
		{"exponent notation", "15e-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Of(tt.input)
			if err != nil {
				t.Fatalf("Of(%v) unexpected error = %v", tt.input, err)
			}
			if equal, _ := d.IsEqual("1.5"); !equal {
				t.Errorf("Of(%v) = %s, expected 1.5", tt.input, d.ToNumber())
			}
		})
	}
}

func TestOfIntegerTypes(t *testing.T) {
	inputs := []any{
		int(-3), int8(-3), int16(-3), int32(-3), int64(-3),
	}
	for _, input := range inputs {
		d, err := Of(input)
		if err != nil {
			t.Fatalf("Of(%T) unexpected error = %v", input, err)
		}
		if s := mustString(t, d); s != "-3.00" {
			t.Errorf("Of(%T(-3)) = %s, expected -3.00", input, s)
		}
	}

	unsigned := []any{
		uint(7), uint8(7), uint16(7), uint32(7), uint64(7),
	}
	for _, input := range unsigned {
		d, err := Of(input)
		if err != nil {
			t.Fatalf("Of(%T) unexpected error = %v", input, err)
		}
		if s := mustString(t, d); s != "7.00" {
			t.Errorf("Of(%T(7)) = %s, expected 7.00", input, s)
		}
	}

	maxUint := MustOf(uint64(18446744073709551615)).Scale(0)
	if s := mustString(t, maxUint); s != "18446744073709551615" {
		t.Errorf("Of(max uint64) = %s", s)
	}

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if s := mustString(t, MustOf(huge).Scale(0)); s != "123456789012345678901234567890" {
		t.Errorf("Of(*big.Int) = %s", s)
	}
}

func TestOfRejectsNonFiniteAPD(t *testing.T) {
	nan := &apd.Decimal{Form: apd.NaN}
	if _, err := Of(nan); err == nil {
		t.Errorf("Of(NaN apd) expected error but got none")
	}
	inf := &apd.Decimal{Form: apd.Infinite}
	if _, err := Of(inf); err == nil {
		t.Errorf("Of(Infinite apd) expected error but got none")
	}

	var nilPointers = []any{(*apd.Decimal)(nil), (*decimal.Decimal)(nil), (*big.Int)(nil), (*Decimal)(nil)}
	for _, p := range nilPointers {
		if _, err := Of(p); err == nil {
			t.Errorf("Of(%T nil) expected error but got none", p)
		}
	}
}

func TestToAPD(t *testing.T) {
	value := MustOf("-1234.5678")
	converted := value.ToAPD()
	expected := apd.New(-12345678, -4)
	if converted.Cmp(expected) != 0 {
		t.Errorf("ToAPD() = %s, expected %s", converted, expected)
	}

	back, err := Of(converted)
	if err != nil {
		t.Fatalf("Of(ToAPD()) unexpected error = %v", err)
	}
	if back.Cmp(value) != 0 {
		t.Errorf("Of(ToAPD()) = %s, expected %s", back.ToNumber(), value.ToNumber())
	}
}
