// Package match normalizes and compares free-text answers against expected
// answers, tolerating case, punctuation and missing diacritics.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jtoivan/ripasso/internal/pack"
)

// stripMarks decomposes to NFD, removes combining marks and recomposes,
// turning "città" into "citta".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text, strips diacritics, maps apostrophes to spaces,
// drops remaining punctuation and collapses whitespace. Idempotent.
func Normalize(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}
	return scrub(stripped)
}

// NormalizeWithAccents applies the same scrubbing as Normalize but keeps
// diacritics (NFC form). Used only to detect accent-only mismatches.
func NormalizeWithAccents(text string) string {
	composed, _, err := transform.String(norm.NFC, text)
	if err != nil {
		composed = text
	}
	return scrub(composed)
}

func scrub(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case isApostrophe(r):
			b.WriteByte(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '’', 'ʼ', '`', '´':
		return true
	}
	return false
}

// IsCorrect reports whether actual matches expected after normalization.
func IsCorrect(expected, actual string) bool {
	return Normalize(expected) == Normalize(actual)
}

// IsCorrectSpec reports whether actual matches any accepted alternative.
func IsCorrectSpec(expected pack.AnswerSpec, actual string) bool {
	for _, alt := range expected {
		if IsCorrect(alt, actual) {
			return true
		}
	}
	return false
}

// IsAccentIssue reports whether actual is correct but differs from expected
// in diacritics only ("citta" for "città"). Purely informational; it never
// affects scoring.
func IsAccentIssue(expected, actual string) bool {
	if !IsCorrect(expected, actual) {
		return false
	}
	return NormalizeWithAccents(expected) != NormalizeWithAccents(actual)
}

// IsAccentIssueSpec reports an accent-only mismatch across alternatives:
// the answer is correct but no alternative matches with accents intact.
func IsAccentIssueSpec(expected pack.AnswerSpec, actual string) bool {
	correct := false
	accentMatch := false
	for _, alt := range expected {
		if IsCorrect(alt, actual) {
			correct = true
		}
		if NormalizeWithAccents(alt) == NormalizeWithAccents(actual) {
			accentMatch = true
		}
	}
	return correct && !accentMatch
}

// IsAlmost reports whether actual is one edit away from expected after
// normalization. An "almost" answer earns a single retry, never a score.
func IsAlmost(expected, actual string) bool {
	if IsCorrect(expected, actual) {
		return false
	}
	return DamerauLevenshtein(Normalize(expected), Normalize(actual)) == 1
}

// IsAlmostSpec reports whether actual is almost-correct for any alternative.
func IsAlmostSpec(expected pack.AnswerSpec, actual string) bool {
	for _, alt := range expected {
		if IsAlmost(alt, actual) {
			return true
		}
	}
	return false
}

// DamerauLevenshtein returns the edit distance between a and b counting
// insertions, deletions, substitutions and adjacent transpositions, each
// at cost 1.
func DamerauLevenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	la := len(ra)
	lb := len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	rows := make([][]int, la+1)
	for i := range rows {
		rows[i] = make([]int, lb+1)
		rows[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		rows[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min3(
				rows[i-1][j]+1,      // deletion
				rows[i][j-1]+1,      // insertion
				rows[i-1][j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := rows[i-2][j-2] + 1; t < d {
					d = t // transposition
				}
			}
			rows[i][j] = d
		}
	}
	return rows[la][lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
