// Package symbols is the single place where exchange-qualified instrument
// ids (NSE:RELIANCE-EQ) are mapped to and from the bare tickers (RELIANCE)
// used as quote keys everywhere else.
package symbols

import "strings"

const (
	defaultExchange = "NSE"
	defaultSeries   = "EQ"
)

// series codes that may appear as a "-XX" suffix on NSE instrument ids.
var knownSeries = map[string]struct{}{
	"EQ": {},
	"BE": {},
	"BZ": {},
	"SM": {},
	"ST": {},
	"MF": {},
}

// Normalize returns the bare ticker for an instrument id. Exchange prefix
// ("NSE:") and a recognised series suffix ("-EQ") are stripped; a ticker
// that is already bare passes through. The result is upper-cased.
func Normalize(id string) string {
	s := strings.ToUpper(strings.TrimSpace(id))

	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}

	// Only strip the suffix when it is a series code; tickers like "M&M-B"
	// must keep their hyphen.
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		if _, ok := knownSeries[s[i+1:]]; ok {
			s = s[:i]
		}
	}

	return s
}

// Qualify returns the exchange-qualified instrument id for a ticker, e.g.
// "TCS" becomes "NSE:TCS-EQ". An id that already carries an exchange prefix
// is returned unchanged apart from upper-casing.
func Qualify(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if s == "" {
		return ""
	}
	if strings.ContainsRune(s, ':') {
		return s
	}
	return defaultExchange + ":" + s + "-" + defaultSeries
}

// QualifyAll maps Qualify over a list, dropping empty entries.
func QualifyAll(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if q := Qualify(t); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// NormalizeAll maps Normalize over a list, dropping empty entries.
func NormalizeAll(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := Normalize(id); n != "" {
			out = append(out, n)
		}
	}
	return out
}
