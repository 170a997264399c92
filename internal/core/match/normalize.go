package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinTokenLen is the shortest description word kept as a search token.
const MinTokenLen = 2

// Fold lower-cases s and replaces accented letters with their base letter,
// rune for rune. The result always has exactly as many runes as s, so a rune
// offset into Fold(s) is a valid offset into s.
func Fold(s string) string {
	return string(FoldRunes([]rune(s)))
}

// FoldRunes is Fold over a rune slice. The input is not modified.
func FoldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = foldRune(r)
	}
	return out
}

func foldRune(r rune) rune {
	r = unicode.ToLower(r)
	if r < utf8.RuneSelf {
		return r
	}
	d := norm.NFD.String(string(r))
	base, size := utf8.DecodeRuneInString(d)
	if size == len(d) {
		return r
	}
	// only strip when everything after the base is a combining mark
	for _, m := range d[size:] {
		if !unicode.Is(unicode.Mn, m) {
			return r
		}
	}
	return base
}

// Tokens splits a line item description into its distinct search words:
// folded, punctuation turned into spaces, words shorter than MinTokenLen dropped.
// Order of first appearance is kept.
func Tokens(description string) []string {
	var b strings.Builder
	for _, r := range Fold(description) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	seen := make(map[string]struct{}, len(words))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < MinTokenLen {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}

// Document keeps the extracted text in both forms the matcher needs: the
// original runes (prices and fields are read from here) and the folded runes
// (searching happens here). Offsets are shared between the two.
type Document struct {
	Original []rune
	Folded   []rune
}

// NewDocument folds text once for repeated searching.
func NewDocument(text string) Document {
	orig := []rune(text)
	return Document{Original: orig, Folded: FoldRunes(orig)}
}

// slice returns the original text in [from, from+span), clamped to the document.
func (d Document) slice(from, span int) string {
	if from < 0 {
		from = 0
	}
	if from >= len(d.Original) {
		return ""
	}
	end := from + span
	if end > len(d.Original) {
		end = len(d.Original)
	}
	return string(d.Original[from:end])
}
