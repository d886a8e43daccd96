package symbol

import (
	"debug/dwarf"
	"io"

	"github.com/hitzhangjie/codesize/pkg/blame"
)

// CompileUnit compilation unit
//
// see DWARFv4 3.1.1 normal and partial compilation unit entries
type CompileUnit struct {
	entry  *dwarf.Entry
	events []blame.Event
}

// parseLineSection parse .(z)debug_line rows of this unit into events
//
// note: one compile unit may contains more than one source files. A row
// without a file keeps the previous row's file, as the textual dumps do.
func (c *CompileUnit) parseLineSection(lineReader *dwarf.LineReader) error {

	var (
		entry dwarf.LineEntry
		uri   string
	)

	for {
		// scan next entry
		err := lineReader.Next(&entry)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if entry.File != nil {
			uri = entry.File.Name
		}

		c.events = append(c.events, blame.Event{
			Address: entry.Address,
			URI:     uri,
			Line:    uint32(entry.Line),
			InText:  !entry.EndSequence,
		})
	}

	return nil
}

func (c *CompileUnit) name() string {
	if name, ok := c.entry.Val(dwarf.AttrName).(string); ok {
		return name
	}
	return "<unnamed>"
}
