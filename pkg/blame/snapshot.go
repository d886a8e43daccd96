package blame

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const snapshotVersion = 1

// ErrSnapshotVersion the snapshot was written by an incompatible version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

type snapshot struct {
	Version  int            `json:"version"`
	Binary   string         `json:"binary"`
	Sections []Section      `json:"sections"`
	Stats    Stats          `json:"stats"`
	Files    []snapshotFile `json:"files"`
}

type snapshotFile struct {
	URI   string         `json:"uri"`
	Lines []snapshotLine `json:"lines"`
}

type snapshotLine struct {
	Line   uint32     `json:"line"`
	Total  uint64     `json:"total"`
	Places []Interval `json:"places"`
}

// Save writes the model as JSON.
func (m *Model) Save(w io.Writer) error {
	s := snapshot{
		Version:  snapshotVersion,
		Binary:   m.Binary,
		Sections: m.Sections,
		Stats:    m.Stats,
		Files:    make([]snapshotFile, 0, len(m.Files)),
	}
	for _, f := range m.Files {
		sf := snapshotFile{URI: f.URI}
		for _, l := range f.Lines() {
			sf.Lines = append(sf.Lines, snapshotLine{Line: l.Number, Total: l.Total, Places: l.Places})
		}
		s.Files = append(s.Files, sf)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadModel reads a model written by Save. Stored totals are kept as is,
// they may exceed the covered bytes of merged places.
func LoadModel(r io.Reader) (*Model, error) {
	var s snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}

	m := &Model{
		Binary:   s.Binary,
		Sections: s.Sections,
		Stats:    s.Stats,
		Files:    make([]*File, 0, len(s.Files)),
	}
	for _, sf := range s.Files {
		f := NewFile(sf.URI)
		for _, sl := range sf.Lines {
			l := f.lineFor(sl.Line)
			l.Total += sl.Total
			l.Places = append(l.Places, sl.Places...)
			f.Total += sl.Total
		}
		m.Files = append(m.Files, f)
	}
	return m, nil
}
