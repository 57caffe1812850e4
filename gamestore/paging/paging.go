package paging

import (
	"sort"

	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
)

// NotFound is the rank reported for games outside the filtered set.
const NotFound = -1

// Request asks for one page of an ordered, filtered set.
type Request struct {
	// Size is the maximum number of games returned.
	Size int `json:"size"`
	// Anchor is the sort key of the last row seen. The page starts right
	// after it, or at it when Inclusive is set. Nil starts from the top.
	Anchor    *order.Entry `json:"anchor,omitempty"`
	Inclusive bool         `json:"inclusive,omitempty"`
	// Pages lists 0-based page indexes whose first-row entries should be
	// returned in Result.Keyset.
	Pages []int `json:"pages,omitempty"`
	// Explain asks the store to describe how the page was computed.
	Explain bool `json:"explain,omitempty"`
}

// Result is one page plus the keyset boundaries requested with it.
type Result struct {
	Games  []game.Game          `json:"games"`
	Keyset map[int]*order.Entry `json:"keyset,omitempty"`
	// Next is the entry of the last returned game; nil for an empty page.
	Next    *order.Entry `json:"next,omitempty"`
	Total   int          `json:"total"`
	Explain []string     `json:"explain,omitempty"`
}

// PageStarts converts page indexes to the 1-based ranks of their first rows,
// dropping negative indexes and duplicates.
func PageStarts(pages []int, size int) []int {
	seen := make(map[int]struct{}, len(pages))
	var out []int
	for _, p := range pages {
		if p < 0 || size <= 0 {
			continue
		}
		rank := p*size + 1
		if _, ok := seen[rank]; ok {
			continue
		}
		seen[rank] = struct{}{}
		out = append(out, rank)
	}
	sort.Ints(out)
	return out
}

// Sorted is a fully ordered slice of matching games with the entry function
// matching its order. It is the reference implementation of ranking and
// paging; stores that push the work into SQL must agree with it.
type Sorted struct {
	Games []game.Game
	Spec  order.Spec
	entry func(g *game.Game) order.Entry
}

// Sort filters nothing: it orders games by cmp and records how to capture
// entries under spec.
func Sort(games []game.Game, spec order.Spec, cmp order.Comparator, entry func(g *game.Game) order.Entry) Sorted {
	sort.SliceStable(games, func(i, j int) bool { return cmp(&games[i], &games[j]) < 0 })
	return Sorted{Games: games, Spec: spec, entry: entry}
}

// RankOf returns the 1-based position of id, or NotFound.
func (s Sorted) RankOf(id string) int {
	for i := range s.Games {
		if s.Games[i].ID == id {
			return i + 1
		}
	}
	return NotFound
}

// Page applies req to the sorted set.
func (s Sorted) Page(req Request) Result {
	res := Result{Total: len(s.Games)}

	start := 0
	if req.Anchor != nil {
		anchor := *req.Anchor
		start = sort.Search(len(s.Games), func(i int) bool {
			c := s.Spec.Compare(anchor, s.entry(&s.Games[i]))
			if req.Inclusive {
				return c <= 0
			}
			return c < 0
		})
	}
	end := start + req.Size
	if end > len(s.Games) || req.Size <= 0 {
		end = len(s.Games)
	}
	res.Games = append([]game.Game{}, s.Games[start:end]...)
	if n := len(res.Games); n > 0 {
		e := s.entry(&res.Games[n-1])
		res.Next = &e
	}

	for _, rank := range PageStarts(req.Pages, req.Size) {
		if rank > len(s.Games) {
			continue
		}
		if res.Keyset == nil {
			res.Keyset = make(map[int]*order.Entry)
		}
		e := s.entry(&s.Games[rank-1])
		res.Keyset[(rank-1)/req.Size] = &e
	}
	return res
}
