package blame

import (
	"fmt"
	"strings"
)

// Model everything known about one binary after attribution
type Model struct {
	Binary   string
	Sections []Section
	Files    []*File
	Stats    Stats
}

// Segment returns the text segment built from Sections.
func (m *Model) Segment() (*TextSegment, bool) {
	return TextSegmentOf(m.Sections)
}

// TotalBytes returns the bytes attributed over all files.
func (m *Model) TotalBytes() uint64 {
	var n uint64
	for _, f := range m.Files {
		n += f.Total
	}
	return n
}

// Lookup returns the line record for uri:line, or nil.
func (m *Model) Lookup(uri string, line uint32) *Line {
	uri = NormalizeURI(uri)
	for _, f := range m.Files {
		if f.URI == uri {
			return f.Line(line)
		}
	}
	return nil
}

// FindFile resolves name to a file, either by exact uri or by a unique
// path suffix such as "lib/a.c".
func (m *Model) FindFile(name string) (*File, error) {
	name = NormalizeURI(name)
	var found []*File
	for _, f := range m.Files {
		if f.URI == name {
			return f, nil
		}
		if strings.HasSuffix(f.URI, "/"+strings.TrimLeft(name, "/")) {
			found = append(found, f)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no file matches %s", name)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%s is ambiguous, %d files match", name, len(found))
	}
}
