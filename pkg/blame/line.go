package blame

import (
	"fmt"
	"sort"
	"strings"
)

// Line bytes attributed to one source line
type Line struct {
	File   *File
	Number uint32
	Total  uint64     // sum of every added interval length, never recomputed
	Places []Interval // insertion order until merged
}

func (l *Line) add(start, length uint64) {
	l.Total += length
	l.Places = append(l.Places, Interval{Start: start, Length: length})
}

// URI returns the owning file's uri.
func (l *Line) URI() string {
	return l.File.URI
}

// AvgBytes returns the average bytes per place.
func (l *Line) AvgBytes() float64 {
	return avg(l.Total, len(l.Places))
}

// Covered returns the bytes covered by the places, which is less than
// Total once overlapping places have been merged.
func (l *Line) Covered() uint64 {
	var n uint64
	for _, p := range l.Places {
		n += p.Length
	}
	return n
}

func (l *Line) String() string {
	return fmt.Sprintf("%s:%d", l.File.URI, l.Number)
}

// File source file with its attributed lines
type File struct {
	URI   string
	Total uint64

	lines map[uint32]*Line
	order []*Line // discovery order
}

// NewFile creates an empty file, uri is normalized to forward slashes.
func NewFile(uri string) *File {
	return &File{
		URI:   NormalizeURI(uri),
		lines: make(map[uint32]*Line),
	}
}

// NormalizeURI converts platform path separators to '/'.
func NormalizeURI(uri string) string {
	return strings.ReplaceAll(uri, `\`, "/")
}

// Add attributes [start, start+length) to line and returns the line.
func (f *File) Add(line uint32, start, length uint64) *Line {
	l := f.lineFor(line)
	l.add(start, length)
	f.Total += length
	return l
}

func (f *File) lineFor(line uint32) *Line {
	l, ok := f.lines[line]
	if !ok {
		l = &Line{File: f, Number: line}
		f.lines[line] = l
		f.order = append(f.order, l)
	}
	return l
}

// Line returns the record for line number n, or nil.
func (f *File) Line(n uint32) *Line {
	return f.lines[n]
}

// Lines returns all lines ordered by line number.
func (f *File) Lines() []*Line {
	lines := make([]*Line, len(f.order))
	copy(lines, f.order)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Number < lines[j].Number
	})
	return lines
}

// NumLines returns the number of distinct lines.
func (f *File) NumLines() int {
	return len(f.lines)
}

// Places returns the number of places over all lines.
func (f *File) Places() int {
	n := 0
	for _, l := range f.order {
		n += len(l.Places)
	}
	return n
}

// AvgBytes returns the average bytes per place.
func (f *File) AvgBytes() float64 {
	return avg(f.Total, f.Places())
}

func (f *File) String() string {
	return fmt.Sprintf("File(%s,%d bytes in %d lines)", f.URI, f.Total, len(f.lines))
}

func avg(total uint64, n int) float64 {
	if n < 1 {
		n = 1
	}
	return float64(total) / float64(n)
}
