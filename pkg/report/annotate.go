package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hitzhangjie/codesize/pkg/blame"
	"github.com/hitzhangjie/codesize/pkg/symbol"
)

// Annotate writes each place of line followed by the instructions in it.
func Annotate(w io.Writer, line *blame.Line, listing *symbol.Listing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s: %d bytes in %d places\n", line, line.Total, len(line.Places))
	for _, p := range line.Places {
		fmt.Fprintf(tw, "  %s\n", p)
		insts := listing.Range(p.Start, p.End())
		if len(insts) == 0 {
			fmt.Fprintf(tw, "\t(no instructions)\n")
		}
		for _, inst := range insts {
			fmt.Fprintf(tw, "\t%#x:\t%s\n", inst.Addr, inst.Text)
		}
	}
	return tw.Flush()
}

// ListSource writes source lines around `lineno` with the bytes attributed
// to each of them, lines holds the whole file and lineno is 1-based.
func ListSource(w io.Writer, file *blame.File, lines []string, lineno, rng int) error {
	begin := lineno - rng - 1
	if begin < 0 {
		begin = 0
	}
	end := lineno + rng
	if end > len(lines) {
		end = len(lines)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for idx := begin; idx < end; idx++ {
		n := idx + 1
		mark := ""
		if n == lineno {
			mark = "=>"
		}
		size := ""
		if l := file.Line(uint32(n)); l != nil {
			size = fmt.Sprintf("%d", l.Total)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t| %s\n", mark, n, size, lines[idx])
	}
	return tw.Flush()
}
