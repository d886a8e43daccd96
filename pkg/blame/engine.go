// Package blame attributes code bytes to the source lines that produced them.
//
// The input is the ordered row stream of a line-number table: every row
// starts a range which ends at the next row's address. Ranges are collected
// per (file, line), merged, and rolled up into a directory tree.
package blame

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoURI is returned for a line-table row without a source file context.
var ErrNoURI = errors.New("line table entry without uri")

// Event one row of the line-number table
type Event struct {
	Address uint64
	URI     string
	Line    uint32
	InText  bool // false for the end-of-sequence marker
}

// EventSource yields events in table order, Next returns io.EOF at the end.
type EventSource interface {
	Next() (Event, error)
}

// Events adapts a slice to EventSource.
func Events(evs []Event) EventSource {
	return &sliceSource{evs: evs}
}

type sliceSource struct {
	evs []Event
	pos int
}

func (s *sliceSource) Next() (Event, error) {
	if s.pos >= len(s.evs) {
		return Event{}, io.EOF
	}
	ev := s.evs[s.pos]
	s.pos++
	return ev, nil
}

// Stats counts what the engine did with the rows it saw.
type Stats struct {
	Events     uint64 `json:"events"`
	Attributed uint64 `json:"attributed"`
	Discarded  uint64 `json:"discarded"` // pending address before the text segment
	Empty      uint64 `json:"empty"`     // two rows at the same address
	Backward   uint64 `json:"backward"`  // next row at a lower address
}

func (s *Stats) add(o Stats) {
	s.Events += o.Events
	s.Attributed += o.Attributed
	s.Discarded += o.Discarded
	s.Empty += o.Empty
	s.Backward += o.Backward
}

// pending is the row whose range is still open.
type pending struct {
	set  bool
	addr uint64
	line uint32
	uri  string
}

// Engine pairs consecutive line-table rows into attributed ranges.
//
// It is not safe for concurrent use, rows must be fed in table order.
type Engine struct {
	segment *TextSegment

	files map[string]*File
	order []*File

	pending pending
	stats   Stats
}

// NewEngine creates an engine, seg may be nil when no text segment is known.
func NewEngine(seg *TextSegment) *Engine {
	return &Engine{
		segment: seg,
		files:   make(map[string]*File),
	}
}

// Feed processes one row.
func (e *Engine) Feed(ev Event) error {
	if ev.URI == "" {
		return fmt.Errorf("%w: address %#x line %d", ErrNoURI, ev.Address, ev.Line)
	}
	e.stats.Events++

	if e.pending.set {
		e.attribute(ev.Address)
	}

	// a uri change alone keeps the pending row, only an end marker clears it
	if ev.InText {
		e.pending = pending{set: true, addr: ev.Address, line: ev.Line, uri: ev.URI}
	} else {
		e.pending = pending{}
	}
	return nil
}

func (e *Engine) attribute(addr uint64) {
	p := e.pending
	switch {
	case e.segment != nil && p.addr < e.segment.Start:
		// rows left behind by linker gc keep their lines but point at 0
		e.stats.Discarded++
	case addr == p.addr:
		e.stats.Empty++
	case addr < p.addr:
		e.stats.Backward++
	default:
		e.file(p.uri).Add(p.line, p.addr, addr-p.addr)
		e.stats.Attributed++
	}
}

// Consume feeds every event of src until io.EOF.
func (e *Engine) Consume(src EventSource) error {
	for {
		ev, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err = e.Feed(ev); err != nil {
			return err
		}
	}
}

func (e *Engine) file(uri string) *File {
	uri = NormalizeURI(uri)
	f, ok := e.files[uri]
	if !ok {
		f = NewFile(uri)
		e.files[uri] = f
		e.order = append(e.order, f)
	}
	return f
}

// Files returns the attributed files in discovery order.
func (e *Engine) Files() []*File {
	files := make([]*File, len(e.order))
	copy(files, e.order)
	return files
}

// File returns the file for uri, or nil.
func (e *Engine) File(uri string) *File {
	return e.files[NormalizeURI(uri)]
}

// Stats returns the row counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Absorb moves everything attributed by other, an engine that consumed an
// independent compile unit, into e. Totals are summed and places appended,
// other must not be used afterwards.
func (e *Engine) Absorb(other *Engine) {
	for _, src := range other.order {
		dst := e.file(src.URI)
		for _, l := range src.order {
			dl := dst.lineFor(l.Number)
			dl.Total += l.Total
			dl.Places = append(dl.Places, l.Places...)
		}
		dst.Total += src.Total
	}
	e.stats.add(other.stats)
}
