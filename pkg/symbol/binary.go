package symbol

import (
	"debug/dwarf"
	"debug/elf"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/atomic"

	"github.com/hitzhangjie/codesize/pkg/blame"
)

var (
	// ErrNoDWARF the binary carries no line table
	ErrNoDWARF = errors.New("no .debug_line section")
	// ErrUnsupportedArch disassembly is only available for amd64
	ErrUnsupportedArch = errors.New("unsupported architecture")
)

// Options loader options
type Options struct {
	// Jobs number of compile units attributed concurrently, <= 0 means GOMAXPROCS
	Jobs int
	// Progress is called after each compile unit, from worker goroutines
	Progress func(done, total uint64)
}

// Analyze reads sections and line tables of executable `execFile` and
// attributes its code bytes to source lines.
func Analyze(execFile string, opts Options) (*blame.Model, error) {

	file, err := elf.Open(execFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// check line section, compressed or not
	if file.Section(".debug_line") == nil && file.Section(".zdebug_line") == nil {
		return nil, fmt.Errorf("%s: %w", execFile, ErrNoDWARF)
	}

	sections := Sections(file)
	seg, _ := blame.TextSegmentOf(sections)

	dwarfData, err := file.DWARF()
	if err != nil {
		return nil, fmt.Errorf("load dwarf: %w", err)
	}

	units, err := readCompileUnits(dwarfData)
	if err != nil {
		return nil, err
	}

	engine, err := attribute(units, seg, opts)
	if err != nil {
		return nil, err
	}

	files := engine.Files()
	blame.MergeRanges(files)

	return &blame.Model{
		Binary:   execFile,
		Sections: sections,
		Files:    files,
		Stats:    engine.Stats(),
	}, nil
}

// AnalyzeEvents attributes an already decoded line-table stream, sections
// may be empty in which case nothing is discarded.
func AnalyzeEvents(name string, src blame.EventSource, sections []blame.Section) (*blame.Model, error) {
	seg, _ := blame.TextSegmentOf(sections)

	engine := blame.NewEngine(seg)
	if err := engine.Consume(src); err != nil {
		return nil, err
	}

	files := engine.Files()
	blame.MergeRanges(files)

	return &blame.Model{
		Binary:   name,
		Sections: sections,
		Files:    files,
		Stats:    engine.Stats(),
	}, nil
}

// ReadSections returns the allocated sections of executable `execFile`.
func ReadSections(execFile string) ([]blame.Section, error) {
	file, err := elf.Open(execFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Sections(file), nil
}

// Sections returns the sections that occupy memory at run time.
func Sections(file *elf.File) []blame.Section {
	var sections []blame.Section
	for _, s := range file.Sections {
		if s.Flags&elf.SHF_ALLOC == 0 || s.Size == 0 {
			continue
		}
		sections = append(sections, blame.Section{Name: s.Name, Start: s.Addr, Size: s.Size})
	}
	return sections
}

// readCompileUnits parse the line program of every compile unit
//
// unit entries: see DWARF v4 chapter 3.3.1 normal and partial compilation unit entries
func readCompileUnits(dwarfData *dwarf.Data) ([]*CompileUnit, error) {
	var units []*CompileUnit

	rd := dwarfData.Reader()
	for {
		entry, err := rd.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil { // reaches the end
			break
		}
		if entry.Tag != dwarf.TagCompileUnit && entry.Tag != dwarf.TagPartialUnit {
			rd.SkipChildren()
			continue
		}

		lr, err := dwarfData.LineReader(entry)
		if err != nil {
			return nil, err
		}
		rd.SkipChildren()
		if lr == nil { // no line table
			continue
		}

		cu := &CompileUnit{entry: entry}
		if err = cu.parseLineSection(lr); err != nil {
			return nil, fmt.Errorf("compile unit %s: %w", cu.name(), err)
		}
		units = append(units, cu)
	}
	return units, nil
}

// attribute runs one engine per compile unit on a bounded worker pool, then
// absorbs them in compile unit order so the result does not depend on
// scheduling.
func attribute(units []*CompileUnit, seg *blame.TextSegment, opts Options) (*blame.Engine, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var (
		engines = make([]*blame.Engine, len(units))
		errs    = make([]error, len(units))
		done    = atomic.NewUint64(0)
		total   = uint64(len(units))
		ch      = make(chan int)
		wg      sync.WaitGroup
	)

	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				e := blame.NewEngine(seg)
				errs[i] = e.Consume(blame.Events(units[i].events))
				engines[i] = e

				n := done.Inc()
				if opts.Progress != nil {
					opts.Progress(n, total)
				}
			}
		}()
	}
	for i := range units {
		ch <- i
	}
	close(ch)
	wg.Wait()

	merged := blame.NewEngine(seg)
	for i, e := range engines {
		if errs[i] != nil {
			return nil, fmt.Errorf("compile unit %s: %w", units[i].name(), errs[i])
		}
		merged.Absorb(e)
	}
	return merged, nil
}
