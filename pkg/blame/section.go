package blame

import "strings"

const textPrefix = ".text"

// Section a named address range from the section headers
type Section struct {
	Name  string `json:"name"`
	Start uint64 `json:"start"`
	Size  uint64 `json:"size"`
}

// End returns the first address past the section.
func (s Section) End() uint64 {
	return s.Start + s.Size
}

// IsText reports whether the section holds executable code.
func (s Section) IsText() bool {
	return strings.HasPrefix(s.Name, textPrefix)
}

// TextSegment is the virtual union of all .text* sections.
//
// EffectiveSize sums the individual section sizes, it is smaller than the
// span when the linker left holes between sections.
type TextSegment struct {
	Start         uint64
	End           uint64
	EffectiveSize uint64
}

// TextSegmentOf combines all .text prefixed sections, ok is false if none.
func TextSegmentOf(sections []Section) (seg *TextSegment, ok bool) {
	for _, s := range sections {
		if !s.IsText() {
			continue
		}
		if seg == nil {
			seg = &TextSegment{Start: s.Start, End: s.End()}
		}
		if s.Start < seg.Start {
			seg.Start = s.Start
		}
		if s.End() > seg.End {
			seg.End = s.End()
		}
		seg.EffectiveSize += s.Size
	}
	return seg, seg != nil
}

// Span returns End-Start.
func (t *TextSegment) Span() uint64 {
	return t.End - t.Start
}

// Holes returns the bytes inside the span not covered by any section.
func (t *TextSegment) Holes() uint64 {
	if span := t.Span(); span > t.EffectiveSize {
		return span - t.EffectiveSize
	}
	return 0
}

// Contains reports whether addr is inside [Start, End).
func (t *TextSegment) Contains(addr uint64) bool {
	return t.Start <= addr && addr < t.End
}
