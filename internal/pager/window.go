// Package pager maps a continuous scroll offset onto pages of a presentation
// sequence and tracks what the learner has revealed.
package pager

import (
	"fmt"
	"math"
)

// Policy decides how the window start behaves near the end of the sequence.
type Policy int

const (
	// Shrink lets the start run up to len-1 so the last window may be short.
	// The scroll controller already bounds the offset, so this is the default.
	Shrink Policy = iota
	// Clamp keeps the start at or below len-pageSize so windows stay full.
	Clamp
)

func (p Policy) String() string {
	if p == Clamp {
		return "clamp"
	}
	return "shrink"
}

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "shrink":
		return Shrink, nil
	case "clamp":
		return Clamp, nil
	}
	return Shrink, fmt.Errorf("unknown window policy %q", s)
}

// Window is the visible slice of a sequence.
type Window[T any] struct {
	Items []T
	Start int
}

// End returns the index one past the last visible element.
func (w Window[T]) End() int {
	return w.Start + len(w.Items)
}

// WindowFor derives the visible window from a scroll offset measured in the
// same units as rowHeight.
func WindowFor[T any](seq []T, offset float64, pageSize int, rowHeight float64, policy Policy) Window[T] {
	if len(seq) == 0 || pageSize <= 0 {
		return Window[T]{Items: []T{}}
	}
	if rowHeight <= 0 {
		rowHeight = 1
	}

	start := 0
	if offset > 0 {
		start = int(math.Floor(offset / rowHeight))
	}
	limit := len(seq) - 1
	if policy == Clamp {
		limit = max(0, len(seq)-pageSize)
	}
	start = min(start, limit)

	end := min(start+pageSize, len(seq))
	return Window[T]{Items: seq[start:end], Start: start}
}
