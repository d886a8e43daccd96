// Package report ranks attributed files and lines and renders summaries.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/hitzhangjie/codesize/pkg/blame"
)

// DefaultTop entries shown per summary when not configured
const DefaultTop = 20

// Options report options
type Options struct {
	TopFiles int
	TopLines int
	// MinAvgBytes hides entries whose bytes per place is at or below it,
	// 0 disables the filter
	MinAvgBytes float64
	// Places lists every place under each line
	Places bool
}

// FileSummary one ranked file
type FileSummary struct {
	URI     string  `json:"uri"`
	Bytes   uint64  `json:"bytes"`
	Percent float64 `json:"percent"`
	Places  int     `json:"places"`
	Lines   int     `json:"lines"`
}

// LineSummary one ranked line
type LineSummary struct {
	URI       string           `json:"uri"`
	Line      uint32           `json:"line"`
	Bytes     uint64           `json:"bytes"`
	Places    int              `json:"places"`
	Intervals []blame.Interval `json:"intervals,omitempty"`
}

// Segment text segment figures, absent when the binary has no .text section
type Segment struct {
	Start         uint64  `json:"start"`
	End           uint64  `json:"end"`
	EffectiveSize uint64  `json:"effective_size"`
	Holes         uint64  `json:"holes"`
	Coverage      float64 `json:"coverage"`
}

// Report ranked summaries of a model
type Report struct {
	Binary     string        `json:"binary"`
	NumFiles   int           `json:"num_files"`
	TotalBytes uint64        `json:"total_bytes"`
	Segment    *Segment      `json:"segment,omitempty"`
	Stats      blame.Stats   `json:"stats"`
	Files      []FileSummary `json:"files"`
	Lines      []LineSummary `json:"lines"`
}

// Build ranks the files and lines of m.
func Build(m *blame.Model, opts Options) (Report, error) {
	if m == nil {
		return Report{}, errors.New("model is nil")
	}
	if opts.TopFiles <= 0 {
		opts.TopFiles = DefaultTop
	}
	if opts.TopLines <= 0 {
		opts.TopLines = DefaultTop
	}

	total := m.TotalBytes()
	r := Report{
		Binary:     m.Binary,
		NumFiles:   len(m.Files),
		TotalBytes: total,
		Stats:      m.Stats,
	}

	if seg, ok := m.Segment(); ok {
		r.Segment = &Segment{
			Start:         seg.Start,
			End:           seg.End,
			EffectiveSize: seg.EffectiveSize,
			Holes:         seg.Holes(),
			Coverage:      percent(total, seg.EffectiveSize),
		}
	}

	for _, f := range truncate(RankFiles(m.Files, opts.MinAvgBytes), opts.TopFiles) {
		r.Files = append(r.Files, FileSummary{
			URI:     f.URI,
			Bytes:   f.Total,
			Percent: percent(f.Total, total),
			Places:  f.Places(),
			Lines:   f.NumLines(),
		})
	}

	for _, l := range truncate(RankLines(m.Files, opts.MinAvgBytes), opts.TopLines) {
		ls := LineSummary{
			URI:    l.URI(),
			Line:   l.Number,
			Bytes:  l.Total,
			Places: len(l.Places),
		}
		if opts.Places {
			ls.Intervals = l.Places
		}
		r.Lines = append(r.Lines, ls)
	}

	return r, nil
}

// RankFiles orders files by bytes descending, ties by uri. Files whose
// average bytes per place is at or below minAvg are left out when minAvg > 0.
func RankFiles(files []*blame.File, minAvg float64) []*blame.File {
	ranked := make([]*blame.File, 0, len(files))
	for _, f := range files {
		if minAvg > 0 && f.AvgBytes() <= minAvg {
			continue
		}
		ranked = append(ranked, f)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total == ranked[j].Total {
			return ranked[i].URI < ranked[j].URI
		}
		return ranked[i].Total > ranked[j].Total
	})
	return ranked
}

// RankLines pools the lines of all files and orders them by bytes
// descending, ties by uri then line number. minAvg filters as in RankFiles.
func RankLines(files []*blame.File, minAvg float64) []*blame.Line {
	var ranked []*blame.Line
	for _, f := range files {
		for _, l := range f.Lines() {
			if minAvg > 0 && l.AvgBytes() <= minAvg {
				continue
			}
			ranked = append(ranked, l)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.URI() != b.URI() {
			return a.URI() < b.URI()
		}
		return a.Number < b.Number
	})
	return ranked
}

func truncate[T any](s []T, n int) []T {
	if n < len(s) {
		return s[:n]
	}
	return s
}

func percent(n, of uint64) float64 {
	if of == 0 {
		return 0
	}
	return 100 * float64(n) / float64(of)
}

// Write renders the report.
func (r Report) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if r.Segment != nil {
		s := r.Segment
		fmt.Fprintf(tw, "TEXT SEGMENT %#x..%#x: %d bytes in sections, %d bytes in holes, %d bytes attributed (%2.1f%%)\n",
			s.Start, s.End, s.EffectiveSize, s.Holes, r.TotalBytes, s.Coverage)
	} else {
		fmt.Fprintf(tw, "TEXT SEGMENT unknown: %d bytes attributed\n", r.TotalBytes)
	}
	if r.Stats.Discarded != 0 {
		fmt.Fprintf(tw, "%d line table entries before the text segment discarded\n", r.Stats.Discarded)
	}
	fmt.Fprintln(tw)

	r.writeFiles(tw)
	fmt.Fprintln(tw)
	r.writeLines(tw)
	return tw.Flush()
}

// WriteFiles renders the file summary only.
func (r Report) WriteFiles(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	r.writeFiles(tw)
	return tw.Flush()
}

// WriteLines renders the line summary only.
func (r Report) WriteLines(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	r.writeLines(tw)
	return tw.Flush()
}

func (r Report) writeFiles(tw *tabwriter.Writer) {
	fmt.Fprintf(tw, "FILE SUMMARY (out of %d files)\n", r.NumFiles)
	for _, f := range r.Files {
		fmt.Fprintf(tw, "%s:\t%d bytes\t(%2.1f%%)\t%d places\t%d lines\n", f.URI, f.Bytes, f.Percent, f.Places, f.Lines)
	}
}

func (r Report) writeLines(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "LINE SUMMARY")
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "%s:%d:\t%d bytes\t%d places\n", l.URI, l.Line, l.Bytes, l.Places)
		for _, p := range l.Intervals {
			fmt.Fprintf(tw, "\t%x..%x\n", p.Start, p.End())
		}
	}
}

// WriteDirs renders the n largest directories, all of them if n <= 0.
func WriteDirs(w io.Writer, dirs []blame.DirTotal, n int) error {
	if n > 0 {
		dirs = truncate(dirs, n)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, d := range dirs {
		fmt.Fprintf(tw, "%d\t  %s\n", d.Total, d.Path)
	}
	return tw.Flush()
}
