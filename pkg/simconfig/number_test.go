package simconfig

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{4, "4.0"},
		{-3, "-3.0"},
		{12.0, "12.0"},
		{21.5, "21.5"},
		{0.0007, "0.0007"},
		{0.01, "0.01"},
		{2.5e-10, "2.5e-10"},
	}
	for _, tc := range cases {
		if got := formatNumber(tc.in); got != tc.want {
			t.Fatalf("formatNumber(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	v, err := parseNumber("  21.5 ")
	if err != nil || v != 21.5 {
		t.Fatalf("parseNumber = %v, %v", v, err)
	}
	if _, err := parseNumber("abc"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

func TestParseBool(t *testing.T) {
	if !parseBool("TRUE") || !parseBool("true") {
		t.Fatal("true variants must parse true")
	}
	if parseBool("false") || parseBool("") || parseBool("1") {
		t.Fatal("non-true values must parse false")
	}
}
