// AngelaMos | 2026
// progress.go

package progress

import (
	"cmp"
	"slices"
	"time"
)

// Phase is anything that can be ordered on a project timeline.
type Phase interface {
	PhaseOrder() int
	Completed() bool
	CreatedTime() time.Time
	Key() string
}

type Summary[P Phase] struct {
	CompletedCount  int `json:"completed_count"`
	TotalCount      int `json:"total_count"`
	PercentComplete int `json:"percent_complete"`
	CurrentPhase    *P  `json:"current_phase"`
	Ordered         []P `json:"-"`
}

// Sort orders phases by phase order, then creation time, then key, so
// duplicate orders still produce one deterministic sequence. The input is
// not modified.
func Sort[P Phase](phases []P) []P {
	ordered := slices.Clone(phases)
	slices.SortStableFunc(ordered, func(a, b P) int {
		if c := cmp.Compare(a.PhaseOrder(), b.PhaseOrder()); c != 0 {
			return c
		}
		if c := a.CreatedTime().Compare(b.CreatedTime()); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})
	return ordered
}

// Aggregate derives progress from a project's phases. The current phase is
// the first incomplete phase, or the last phase once all are complete, or
// nil when there are none.
func Aggregate[P Phase](phases []P) Summary[P] {
	ordered := Sort(phases)
	s := Summary[P]{
		TotalCount: len(ordered),
		Ordered:    ordered,
	}

	for i := range ordered {
		if ordered[i].Completed() {
			s.CompletedCount++
			continue
		}
		if s.CurrentPhase == nil {
			s.CurrentPhase = &ordered[i]
		}
	}

	if s.CurrentPhase == nil && len(ordered) > 0 {
		s.CurrentPhase = &ordered[len(ordered)-1]
	}

	s.PercentComplete = Percent(s.CompletedCount, s.TotalCount)
	return s
}

// Percent is round(100*part/whole) with halves rounded up, and 0 for an
// empty whole.
func Percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	if part >= whole {
		return 100
	}
	return (200*part + whole) / (2 * whole)
}
