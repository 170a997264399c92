package match

// Positions returns every rune offset at which token occurs in folded,
// in ascending order. Occurrences may overlap. The token is expected to be
// folded already.
func Positions(folded []rune, token string) []int {
	needle := []rune(token)
	if len(needle) == 0 {
		return nil
	}
	var out []int
	for i := indexRunes(folded, needle, 0); i >= 0; i = indexRunes(folded, needle, i+1) {
		out = append(out, i)
	}
	return out
}

// indexRunes is strings.Index over runes, starting the scan at from.
func indexRunes(hay, needle []rune, from int) int {
	n := len(needle)
	if n == 0 {
		return -1
	}
	for i := from; i+n <= len(hay); i++ {
		if hay[i] != needle[0] {
			continue
		}
		j := 1
		for j < n && hay[i+j] == needle[j] {
			j++
		}
		if j == n {
			return i
		}
	}
	return -1
}
