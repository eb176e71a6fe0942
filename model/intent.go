package model

import (
	"sort"
	"strings"
)

// Intent is a coarse category of what a question asks about.
type Intent string

const (
	IntentPrice      Intent = "price"
	IntentDate       Intent = "date"
	IntentEMI        Intent = "emi"
	IntentCurriculum Intent = "curriculum"
	IntentInstructor Intent = "instructor"
	IntentPlacement  Intent = "placement"
	IntentReview     Intent = "review"
	IntentGeneral    Intent = "general"
)

// IntentSet is an unordered set of intents. An empty set means general.
type IntentSet map[Intent]struct{}

// NewIntentSet creates a set from the given intents.
func NewIntentSet(intents ...Intent) IntentSet {
	s := make(IntentSet, len(intents))
	for _, i := range intents {
		s.Add(i)
	}
	return s
}

// Add inserts an intent. General is implied by emptiness and never stored.
func (s IntentSet) Add(i Intent) {
	if i == IntentGeneral || i == "" {
		return
	}
	s[i] = struct{}{}
}

// Has reports whether i is in the set.
func (s IntentSet) Has(i Intent) bool {
	if i == IntentGeneral {
		return len(s) == 0
	}
	_, ok := s[i]
	return ok
}

// IsGeneral reports whether no specific intent was detected.
func (s IntentSet) IsGeneral() bool {
	return len(s) == 0
}

// Intersects reports whether s and other share at least one intent.
func (s IntentSet) Intersects(other IntentSet) bool {
	for i := range s {
		if _, ok := other[i]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the intents in lexical order.
func (s IntentSet) Sorted() []Intent {
	out := make([]Intent, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func (s IntentSet) String() string {
	if s.IsGeneral() {
		return string(IntentGeneral)
	}
	parts := make([]string, 0, len(s))
	for _, i := range s.Sorted() {
		parts = append(parts, string(i))
	}
	return strings.Join(parts, ",")
}
