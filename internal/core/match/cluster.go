package match

import "sort"

// ProximityWindow is how far (in runes, either side) a token occurrence may be
// from an anchor and still count as part of its cluster.
const ProximityWindow = 200

// Cluster is where most of a line item's tokens appear together.
type Cluster struct {
	Position int     // rune offset of the winning anchor
	Recall   float64 // matched tokens / all tokens
	Matched  int     // tokens with at least one occurrence
	Total    int     // tokens searched for
	Support  int     // distinct tokens inside the window around Position
}

type tokenHits struct {
	token     string
	positions []int // ascending
}

type anchor struct {
	position int
	support  int
}

// Locate finds the offset in folded around which the largest number of
// distinct tokens occur within ProximityWindow. It reports false when no
// token occurs at all. Anchors are visited in token order, then occurrence
// order; a later anchor only wins with strictly more support.
func Locate(folded []rune, tokens []string) (Cluster, bool) {
	if len(tokens) == 0 {
		return Cluster{}, false
	}
	hits := collectHits(folded, tokens)
	if len(hits) == 0 {
		return Cluster{}, false
	}

	c := Cluster{
		Recall:  float64(len(hits)) / float64(len(tokens)),
		Matched: len(hits),
		Total:   len(tokens),
	}
	if len(hits) == 1 {
		c.Position = hits[0].positions[0]
		c.Support = 1
		return c, true
	}

	best := anchor{position: -1, support: 0}
	for _, h := range hits {
		for _, p := range h.positions {
			best = better(best, anchor{position: p, support: support(hits, p)})
		}
	}
	c.Position = best.position
	c.Support = best.support
	return c, true
}

func better(cur, cand anchor) anchor {
	if cand.support > cur.support {
		return cand
	}
	return cur
}

func collectHits(folded []rune, tokens []string) []tokenHits {
	hits := make([]tokenHits, 0, len(tokens))
	for _, t := range tokens {
		if ps := Positions(folded, t); len(ps) > 0 {
			hits = append(hits, tokenHits{token: t, positions: ps})
		}
	}
	return hits
}

// support counts the distinct tokens with an occurrence within the window around at.
func support(hits []tokenHits, at int) int {
	n := 0
	for _, h := range hits {
		i := sort.SearchInts(h.positions, at-ProximityWindow)
		if i < len(h.positions) && h.positions[i] <= at+ProximityWindow {
			n++
		}
	}
	return n
}
