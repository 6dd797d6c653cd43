package diagnostic

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Closest ranks keys by how likely they are what the user meant when typing
// key, best first, and returns at most n of them.
//
// Candidates are keys containing the typed characters in order, plus keys
// within a small edit distance of key so plain typos are caught too. They rank
// by edit distance; on ties the in-order matches come first.
func Closest(key string, keys []string, n int) []string {
	if key == "" || n <= 0 || len(keys) == 0 {
		return nil
	}

	type candidate struct {
		key      string
		distance int
		subseq   bool
	}

	seen := map[string]bool{}
	var cands []candidate

	for _, r := range fuzzy.RankFindFold(key, keys) {
		if r.Target == key || seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		cands = append(cands, candidate{key: r.Target, distance: r.Distance, subseq: true})
	}

	limit := max(2, len(key)/3)
	lower := strings.ToLower(key)
	for _, k := range keys {
		if k == key || seen[k] {
			continue
		}
		if dist := fuzzy.LevenshteinDistance(lower, strings.ToLower(k)); dist <= limit {
			seen[k] = true
			cands = append(cands, candidate{key: k, distance: dist})
		}
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		if a.subseq != b.subseq {
			if a.subseq {
				return -1
			}
			return 1
		}
		return strings.Compare(a.key, b.key)
	})

	res := make([]string, 0, min(n, len(cands)))
	for _, c := range cands[:min(n, len(cands))] {
		res = append(res, c.key)
	}
	return res
}
