package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	fieldLookahead = 120
	maxFieldLen    = 80
)

// Keyword synonyms, most specific first.
var (
	PaymentTermKeywords = []string{
		"condições de pagamento",
		"condição de pagamento",
		"cond. pagamento",
		"forma de pagamento",
		"pagamento",
	}
	DeliveryTermKeywords = []string{
		"prazo de entrega",
		"prazo entrega",
		"entrega",
	}
)

// words that start the next field on a quote header; compared folded
var boundaryWords = [][]rune{
	[]rune("prazo"),
	[]rune("condicao"),
	[]rune("condicoes"),
	[]rune("forma"),
	[]rune("validade"),
	[]rune("itens"),
	[]rune("total"),
	[]rune("telefone"),
	[]rune("e-mail"),
	[]rune("email"),
	[]rune("cnpj"),
}

// ExtractField returns the short value following the first keyword that
// yields one, or "" when none does.
func ExtractField(text string, keywords []string) string {
	return NewDocument(text).Field(keywords)
}

// Field is ExtractField on an already folded document.
func (d Document) Field(keywords []string) string {
	for _, kw := range keywords {
		k := FoldRunes([]rune(kw))
		idx := indexRunes(d.Folded, k, 0)
		if idx < 0 {
			continue
		}
		start := idx + len(k)
		end := start + fieldLookahead
		if end > len(d.Original) {
			end = len(d.Original)
		}
		v := cleanFieldValue(d.Original[start:end], d.Folded[start:end])
		if n := utf8.RuneCountInString(v); n > 1 && n < maxFieldLen {
			return v
		}
	}
	return ""
}

func cleanFieldValue(orig, folded []rune) string {
	s := 0
	for s < len(orig) && (unicode.IsSpace(orig[s]) || unicode.IsPunct(orig[s])) {
		s++
	}
	orig, folded = orig[s:], folded[s:]

	cut := len(orig)
	for i, r := range orig {
		if r == '\n' || r == ';' || (r == ' ' && i+1 < len(orig) && orig[i+1] == ' ') {
			cut = i
			break
		}
	}
	if b := firstBoundaryWord(folded[:cut]); b >= 0 {
		cut = b
	}
	return strings.TrimSpace(string(orig[:cut]))
}

// firstBoundaryWord returns the offset of the earliest boundary word that
// stands as a whole word in folded, or -1.
func firstBoundaryWord(folded []rune) int {
	first := -1
	for _, w := range boundaryWords {
		n := len(w)
		for i := indexRunes(folded, w, 0); i >= 0; i = indexRunes(folded, w, i+1) {
			if i > 0 && isWordRune(folded[i-1]) {
				continue
			}
			if end := i + n; end < len(folded) && isWordRune(folded[end]) {
				continue
			}
			if first < 0 || i < first {
				first = i
			}
			break
		}
	}
	return first
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
