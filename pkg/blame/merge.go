package blame

// Merge coalesces the line's places, Total is left alone so that overlapping
// rows stay visible as Total > Covered().
func (l *Line) Merge() {
	l.Places = MergeIntervals(l.Places)
}

// Merge merges the places of every line.
func (f *File) Merge() {
	for _, l := range f.order {
		l.Merge()
	}
}

// MergeRanges runs the range merger over all files.
func MergeRanges(files []*File) {
	for _, f := range files {
		f.Merge()
	}
}
