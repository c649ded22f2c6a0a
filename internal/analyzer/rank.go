package analyzer

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type rankTier int

const (
	tierExactPrefix rankTier = iota
	tierContains
	tierFuzzy
	tierNone
)

func tierOf(query, candidate string) rankTier {
	q := normalizeDashes(query)
	c := normalizeDashes(candidate)
	if q == "" {
		return tierExactPrefix
	}
	switch {
	case strings.HasPrefix(c, q):
		return tierExactPrefix
	case strings.Contains(c, q):
		return tierContains
	case fuzzy.MatchFold(q, c):
		return tierFuzzy
	default:
		return tierNone
	}
}

// RankNames orders candidates by spec.md §4.5's completion ranking ladder
// ("exact prefix > contains > fuzzy", with `-`/`_` treated as equivalent),
// breaking ties alphabetically within a tier and dropping anything that
// doesn't match query at all.
func RankNames(query string, candidates []string) []string {
	type scored struct {
		name string
		tier rankTier
	}
	scoredList := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if t := tierOf(query, c); t != tierNone {
			scoredList = append(scoredList, scored{c, t})
		}
	}
	sort.SliceStable(scoredList, func(i, j int) bool {
		if scoredList[i].tier != scoredList[j].tier {
			return scoredList[i].tier < scoredList[j].tier
		}
		return scoredList[i].name < scoredList[j].name
	})
	out := make([]string, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.name
	}
	return out
}
