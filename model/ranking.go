package model

import (
	"fmt"
	"strings"
)

// SortMode selects a feed ordering. Every mode is a total order: id
// descending is the final tiebreak in all of them, so repeated reads over
// an unchanged data set return identical sequences.
type SortMode string

const (
	SortNew           SortMode = "new"
	SortHot           SortMode = "hot"
	SortControversial SortMode = "controversial"
)

func ParseSortMode(raw string) (SortMode, error) {
	switch SortMode(strings.ToLower(raw)) {
	case SortNew:
		return SortNew, nil
	case SortHot:
		return SortHot, nil
	case SortControversial:
		return SortControversial, nil
	}
	return "", fmt.Errorf("invalid sort mode %q", raw)
}

// Less reports whether a ranks before b under the given mode.
//
//	new:           created_at desc, id desc
//	hot:           (upvotes - downvotes) desc, created_at desc, id desc
//	controversial: |upvotes - downvotes| asc, (upvotes + downvotes) desc, id desc
//
// The controversial tie-break toward higher engagement is intentional:
// zero-vote posts share the best divergence (0) but sink on total votes.
func Less(mode SortMode, a, b *Post) bool {
	switch mode {
	case SortHot:
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
	case SortControversial:
		if a.Divergence() != b.Divergence() {
			return a.Divergence() < b.Divergence()
		}
		if a.TotalVotes() != b.TotalVotes() {
			return a.TotalVotes() > b.TotalVotes()
		}
		return a.Id > b.Id
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Id > b.Id
}
