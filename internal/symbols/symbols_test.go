package symbols

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"NSE:RELIANCE-EQ": "RELIANCE",
		"NSE:TCS-EQ":      "TCS",
		"NSE:IDEA-BE":     "IDEA",
		"BSE:INFY-EQ":     "INFY",
		"TCS":             "TCS",
		"tcs":             "TCS",
		" NSE:WIPRO-EQ ":  "WIPRO",
		"NSE:M&M-EQ":      "M&M",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeKeepsUnknownSuffix(t *testing.T) {
	// A hyphen that is not a series code is part of the ticker.
	if got := Normalize("NSE:FOO-BAR"); got != "FOO-BAR" {
		t.Errorf("Normalize(NSE:FOO-BAR) = %q, want FOO-BAR", got)
	}
}

func TestQualify(t *testing.T) {
	cases := map[string]string{
		"TCS":        "NSE:TCS-EQ",
		"reliance":   "NSE:RELIANCE-EQ",
		"NSE:TCS-EQ": "NSE:TCS-EQ",
		"":           "",
	}
	for in, want := range cases {
		if got := Qualify(in); got != want {
			t.Errorf("Qualify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ticker := range []string{"TCS", "INFY", "RELIANCE"} {
		if got := Normalize(Qualify(ticker)); got != ticker {
			t.Errorf("Normalize(Qualify(%q)) = %q, want %q", ticker, got, ticker)
		}
	}
}

func TestQualifyAll(t *testing.T) {
	got := QualifyAll([]string{"tcs", "", "INFY"})
	want := []string{"NSE:TCS-EQ", "NSE:INFY-EQ"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QualifyAll = %v, want %v", got, want)
	}
}
