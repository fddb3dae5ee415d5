// Package normalize derives the canonical matching keys used across the
// reconciliation pipeline: normalized scheme names, normalized fund-house
// names, and ISIN extraction/validation. Every function here is total and
// deterministic so the outputs can serve as join and index keys.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// boilerplate is the fixed vocabulary of plan/option tokens stripped from
// scheme names before matching. Two registrars spell the same scheme with
// different plan suffixes; the tokens carry no identity.
var boilerplate = map[string]bool{
	"direct":       true,
	"regular":      true,
	"growth":       true,
	"dividend":     true,
	"payout":       true,
	"reinvestment": true,
	"plan":         true,
	"option":       true,
	"fund":         true,
}

var (
	isinPattern     = regexp.MustCompile(`IN[A-Z0-9]{10}`)
	isinExact       = regexp.MustCompile(`^IN[A-Z0-9]{10}$`)
	mutualFundToken = regexp.MustCompile(`(?i)\bmutual\s*fund\b`)
)

// stripMarks removes combining marks after NFD decomposition, folding
// accented characters to their ASCII base.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name canonicalizes a raw scheme name into the matching key stored
// alongside every record: case folded, diacritics stripped, punctuation
// collapsed, boilerplate plan/option tokens removed. It never fails; bad
// input yields an empty string.
func Name(raw string) string {
	if raw == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if !boilerplate[f] {
			kept = append(kept, f)
		}
	}

	return strings.Join(kept, " ")
}

// AMC canonicalizes a fund-house name: the "Mutual Fund" suffix and
// punctuation carry no identity across feeds.
func AMC(raw string) string {
	if raw == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, raw)
	if err != nil {
		folded = raw
	}
	folded = mutualFundToken.ReplaceAllString(folded, " ")
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// ValidISIN reports whether s is exactly an Indian ISIN: IN followed by
// ten alphanumerics, twelve characters total.
func ValidISIN(s string) bool {
	return isinExact.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// ExtractISINs pulls every ISIN out of a free-form field. The AMFI feed
// publishes up to three variants jammed into a single column.
func ExtractISINs(field string) []string {
	if field == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(strings.ToUpper(field), " ", "")
	return isinPattern.FindAllString(cleaned, -1)
}

// CleanISIN trims and upcases a single-ISIN field, returning "" when the
// field does not hold a valid ISIN.
func CleanISIN(s string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(s))
	if !isinExact.MatchString(cleaned) {
		return ""
	}
	return cleaned
}
