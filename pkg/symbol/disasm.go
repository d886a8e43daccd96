package symbol

import (
	"debug/elf"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Instruction one decoded instruction
type Instruction struct {
	Addr uint64
	Text string
}

// Listing maps instruction addresses to their disassembly text.
type Listing struct {
	addrs []uint64
	text  map[uint64]string
}

// NewListing builds a listing from an address to text mapping, e.g. one
// parsed from a disassembler's output.
func NewListing(text map[uint64]string) *Listing {
	l := &Listing{text: make(map[uint64]string, len(text))}
	for addr, s := range text {
		l.add(addr, s)
	}
	sort.Slice(l.addrs, func(i, j int) bool { return l.addrs[i] < l.addrs[j] })
	return l
}

// Lookup returns the text of the instruction starting at addr.
func (l *Listing) Lookup(addr uint64) (string, bool) {
	s, ok := l.text[addr]
	return s, ok
}

// Len returns the number of instructions.
func (l *Listing) Len() int {
	return len(l.addrs)
}

// Range returns the instructions starting inside [start, end).
func (l *Listing) Range(start, end uint64) []Instruction {
	i := sort.Search(len(l.addrs), func(i int) bool { return l.addrs[i] >= start })
	var insts []Instruction
	for ; i < len(l.addrs) && l.addrs[i] < end; i++ {
		insts = append(insts, Instruction{Addr: l.addrs[i], Text: l.text[l.addrs[i]]})
	}
	return insts
}

// DisassembleFile opens executable `execFile` and disassembles it.
func DisassembleFile(execFile, syntax string) (*Listing, error) {
	file, err := elf.Open(execFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Disassemble(file, syntax)
}

// Disassemble decodes every .text section, syntax is one of go, gnu, intel.
func Disassemble(file *elf.File, syntax string) (*Listing, error) {
	if file.Machine != elf.EM_X86_64 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedArch, file.Machine)
	}
	if err := checkSyntax(syntax); err != nil {
		return nil, err
	}

	lookup := symbolizer(file)
	l := &Listing{text: make(map[uint64]string)}

	for _, s := range codeSections(file) {
		dat, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("read section %s: %w", s.Name, err)
		}

		offset := 0
		for offset < len(dat) {
			pc := s.Addr + uint64(offset)
			inst, err := x86asm.Decode(dat[offset:], 64)
			if err != nil {
				l.add(pc, fmt.Sprintf("% x\t(bad)", dat[offset:offset+1]))
				offset++
				continue
			}
			asm, _ := instSyntax(inst, pc, syntax, lookup)
			l.add(pc, fmt.Sprintf("% x\t%s", dat[offset:offset+inst.Len], asm))
			offset += inst.Len
		}
	}

	sort.Slice(l.addrs, func(i, j int) bool { return l.addrs[i] < l.addrs[j] })
	return l, nil
}

// codeSections returns the executable .text sections, skipping .init, .plt and .fini.
func codeSections(file *elf.File) []*elf.Section {
	var secs []*elf.Section
	for _, s := range file.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_EXECINSTR == 0 {
			continue
		}
		if !strings.HasPrefix(s.Name, ".text") {
			continue
		}
		secs = append(secs, s)
	}
	return secs
}

func (l *Listing) add(addr uint64, text string) {
	if _, ok := l.text[addr]; !ok {
		l.addrs = append(l.addrs, addr)
	}
	l.text[addr] = text
}

func checkSyntax(syntax string) error {
	switch syntax {
	case "go", "gnu", "intel":
		return nil
	}
	return fmt.Errorf("invalid asm syntax %q, supported: go, gnu, intel", syntax)
}

func instSyntax(inst x86asm.Inst, pc uint64, syntax string, lookup x86asm.SymLookup) (string, error) {
	asm := ""
	switch syntax {
	case "go":
		asm = x86asm.GoSyntax(inst, pc, lookup)
	case "gnu":
		asm = x86asm.GNUSyntax(inst, pc, lookup)
	case "intel":
		asm = x86asm.IntelSyntax(inst, pc, lookup)
	default:
		return "", fmt.Errorf("invalid asm syntax %q, supported: go, gnu, intel", syntax)
	}
	return asm, nil
}

// symbolizer resolves call and jump targets to function symbols.
func symbolizer(file *elf.File) x86asm.SymLookup {
	syms, err := file.Symbols()
	if err != nil {
		return nil
	}
	funcs := syms[:0]
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) == elf.STT_FUNC && s.Value != 0 {
			funcs = append(funcs, s)
		}
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Value < funcs[j].Value })

	return func(addr uint64) (string, uint64) {
		i := sort.Search(len(funcs), func(i int) bool { return funcs[i].Value > addr }) - 1
		if i < 0 {
			return "", 0
		}
		s := funcs[i]
		if s.Size != 0 && addr >= s.Value+s.Size {
			return "", 0
		}
		return s.Name, s.Value
	}
}
