package model

import (
	"fmt"
	"strings"
)

type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// ParseDirection accepts the wire values "up"/"down" (case-insensitive)
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToUpper(raw) {
	case string(DirectionUp):
		return DirectionUp, nil
	case string(DirectionDown):
		return DirectionDown, nil
	}
	return "", fmt.Errorf("invalid vote direction %q", raw)
}

func (d Direction) Opposite() Direction {
	if d == DirectionUp {
		return DirectionDown
	}
	return DirectionUp
}

type Vote struct {
	Direction Direction `db:"direction" json:"direction"`
}

type CastOutcome string

const (
	// CastRecorded: first vote by this user on this post
	CastRecorded CastOutcome = "recorded"
	// CastChanged: an existing vote switched direction
	CastChanged CastOutcome = "changed"
	// CastCancelled: re-submitting the same direction retracts the vote
	CastCancelled CastOutcome = "cancelled"
)

// TallyDelta is the compensating adjustment a cast applies to the owning
// post's counters. Deltas are always relative; the store must never write
// absolute tally values.
type TallyDelta struct {
	Up   int64
	Down int64
}

func (td TallyDelta) add(d Direction, n int64) TallyDelta {
	if d == DirectionUp {
		td.Up += n
	} else {
		td.Down += n
	}
	return td
}

// ResolveCast decides what a vote cast does given the user's previous vote
// on the post (nil when none). Every outcome pairs exactly one vote-row
// mutation with one tally adjustment.
func ResolveCast(prev *Direction, next Direction) (CastOutcome, TallyDelta) {
	if prev == nil {
		return CastRecorded, TallyDelta{}.add(next, 1)
	}
	if *prev == next {
		return CastCancelled, TallyDelta{}.add(next, -1)
	}
	return CastChanged, TallyDelta{}.add(*prev, -1).add(next, 1)
}
