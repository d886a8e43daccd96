package blame

import (
	"fmt"
	"sort"
)

// Interval is a half-open byte range [Start, Start+Length).
type Interval struct {
	Start  uint64 `json:"start"`
	Length uint64 `json:"length"`
}

// End returns the first address past the interval.
func (iv Interval) End() uint64 {
	return iv.Start + iv.Length
}

// Touches reports whether b starts inside iv or exactly at its end.
func (iv Interval) Touches(b Interval) bool {
	return iv.Start <= b.Start && b.Start <= iv.End()
}

func (iv Interval) String() string {
	return fmt.Sprintf("%x..%x", iv.Start, iv.End())
}

// MergeIntervals sorts ivs by start address and coalesces every run of
// touching or overlapping intervals into one. The input slice is reused.
func MergeIntervals(ivs []Interval) []Interval {
	if len(ivs) < 2 {
		return ivs
	}
	sort.Slice(ivs, func(i, j int) bool {
		return ivs[i].Start < ivs[j].Start
	})

	o := 0
	for i := 1; i < len(ivs); i++ {
		if ivs[o].Touches(ivs[i]) {
			// o might subsume i
			if end := ivs[i].End(); end > ivs[o].End() {
				ivs[o].Length = end - ivs[o].Start
			}
			continue
		}
		o++
		ivs[o] = ivs[i]
	}
	return ivs[:o+1]
}
