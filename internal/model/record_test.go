package model

import (
	"math"
	"testing"
)

func TestRecordMissing(t *testing.T) {
	rec := Record{"nil": nil, "nan": math.NaN(), "num": 1.5, "str": "x"}
	tests := []struct {
		key  string
		want bool
	}{
		{"absent", true},
		{"nil", true},
		{"nan", true},
		{"num", false},
		{"str", false},
	}
	for _, tt := range tests {
		if got := rec.Missing(tt.key); got != tt.want {
			t.Errorf("Missing(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestRecordFloat(t *testing.T) {
	rec := Record{
		"f":   81.5,
		"s":   "1320.5",
		"bad": "n/a",
		"nan": math.NaN(),
		"i":   7,
	}
	if v, ok := rec.Float("f"); !ok || v != 81.5 {
		t.Errorf("Float(f) = %v, %v", v, ok)
	}
	if v, ok := rec.Float("s"); !ok || v != 1320.5 {
		t.Errorf("Float(s) = %v, %v", v, ok)
	}
	if _, ok := rec.Float("bad"); ok {
		t.Error("Float(bad) parsed")
	}
	if _, ok := rec.Float("nan"); ok {
		t.Error("Float(nan) reported ok")
	}
	if v, ok := rec.Float("i"); !ok || v != 7 {
		t.Errorf("Float(i) = %v, %v", v, ok)
	}
}

func TestRecordInt(t *testing.T) {
	rec := Record{"whole": 2.0, "frac": 2.5, "i": 3}
	if v, ok := rec.Int("whole"); !ok || v != 2 {
		t.Errorf("Int(whole) = %v, %v", v, ok)
	}
	if _, ok := rec.Int("frac"); ok {
		t.Error("Int(frac) accepted a fractional float")
	}
	if v, ok := rec.Int("i"); !ok || v != 3 {
		t.Errorf("Int(i) = %v, %v", v, ok)
	}
}

func TestRecordClone(t *testing.T) {
	rec := Record{"a": 1.0}
	clone := rec.Clone()
	clone["a"] = 2.0
	clone["b"] = 3.0
	if rec["a"] != 1.0 {
		t.Error("Clone shares storage with the original")
	}
	if _, present := rec["b"]; present {
		t.Error("Clone write leaked into the original")
	}
}
