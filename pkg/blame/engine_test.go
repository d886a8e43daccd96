package blame

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attributed struct {
	start, end uint64
	uri        string
	line       uint32
}

func flatten(files []*File) []attributed {
	var out []attributed
	for _, f := range files {
		for _, l := range f.Lines() {
			for _, p := range l.Places {
				out = append(out, attributed{p.Start, p.End(), f.URI, l.Number})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.uri != b.uri {
			return a.uri < b.uri
		}
		if a.line != b.line {
			return a.line < b.line
		}
		return a.start < b.start
	})
	return out
}

// sampleEvents two sequences, the second one at lower addresses
func sampleEvents() []Event {
	return []Event{
		{0x24c0, "f1", 52, true},
		{0x24d5, "f2", 1127, true},
		{0x24e8, "f2", 1098, true},
		{0x253b, "f2", 1123, true},
		{0x255c, "f2", 1123, false},
		{0xbf0, "f2", 944, true},
		{0xbf7, "f2", 948, true},
		{0xbff, "f2", 948, false},
	}
}

func TestEngineGolden(t *testing.T) {
	for _, seg := range []*TextSegment{nil, {Start: 0xbf0, End: 0x2600, EffectiveSize: 0x1a10}} {
		e := NewEngine(seg)
		require.NoError(t, e.Consume(Events(sampleEvents())))

		want := []attributed{
			{0x24c0, 0x24d5, "f1", 52},
			{0xbf0, 0xbf7, "f2", 944},
			{0xbf7, 0xbff, "f2", 948},
			{0x24e8, 0x253b, "f2", 1098},
			{0x253b, 0x255c, "f2", 1123},
			{0x24d5, 0x24e8, "f2", 1127},
		}
		assert.Equal(t, want, flatten(e.Files()))

		st := e.Stats()
		assert.EqualValues(t, 8, st.Events)
		assert.EqualValues(t, 6, st.Attributed)
		assert.Zero(t, st.Discarded)
	}
}

func TestEngineFileTotals(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Consume(Events(sampleEvents())))

	files := e.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "f1", files[0].URI)
	assert.EqualValues(t, 0x15, files[0].Total)

	for _, f := range files {
		var sum uint64
		for _, l := range f.Lines() {
			sum += l.Total
		}
		assert.Equal(t, f.Total, sum, f.URI)
	}
	assert.EqualValues(t, 0x8+0x7+0x13+0x53+0x21, e.File("f2").Total)
}

func TestEngineEndOfSequence(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Consume(Events([]Event{
		{0x100, "a.c", 1, true},
		{0x110, "a.c", 1, false},
		{0x200, "a.c", 2, true},
		{0x208, "a.c", 2, false},
	})))

	assert.Equal(t, []attributed{
		{0x100, 0x110, "a.c", 1},
		{0x200, 0x208, "a.c", 2},
	}, flatten(e.Files()))
}

func TestEngineBeforeSegment(t *testing.T) {
	seg := &TextSegment{Start: 0x1000, End: 0x2000, EffectiveSize: 0x1000}
	e := NewEngine(seg)
	require.NoError(t, e.Consume(Events([]Event{
		{0x0, "dead.c", 10, true},
		{0x40, "dead.c", 11, true},
		{0x1000, "live.c", 20, true},
		{0x1010, "live.c", 21, true},
		{0x1018, "live.c", 21, false},
	})))

	assert.Equal(t, []attributed{
		{0x1000, 0x1010, "live.c", 20},
		{0x1010, 0x1018, "live.c", 21},
	}, flatten(e.Files()))
	assert.Nil(t, e.File("dead.c"))
	assert.EqualValues(t, 2, e.Stats().Discarded)
}

func TestEngineNoURI(t *testing.T) {
	e := NewEngine(nil)
	err := e.Consume(Events([]Event{{Address: 0x10, Line: 3, InText: true}}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoURI))
}

// A uri change without an end marker keeps the pending row, the range up to
// the new row still belongs to the previous file and line.
func TestEngineURIChangeKeepsPending(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Consume(Events([]Event{
		{0x10, "a.c", 7, true},
		{0x20, "b.c", 9, true},
		{0x28, "b.c", 9, false},
	})))

	assert.Equal(t, []attributed{
		{0x10, 0x20, "a.c", 7},
		{0x20, 0x28, "b.c", 9},
	}, flatten(e.Files()))
}

func TestEngineEmptyAndBackward(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Consume(Events([]Event{
		{0x10, "a.c", 1, true},
		{0x10, "a.c", 2, true},
		{0x18, "a.c", 3, true},
		{0x08, "a.c", 4, true},
		{0x0c, "a.c", 4, false},
	})))

	assert.Equal(t, []attributed{
		{0x10, 0x18, "a.c", 2},
		{0x08, 0x0c, "a.c", 4},
	}, flatten(e.Files()))
	st := e.Stats()
	assert.EqualValues(t, 1, st.Empty)
	assert.EqualValues(t, 1, st.Backward)
}

func TestEngineNormalizesURI(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Consume(Events([]Event{
		{0x10, `C:\src\a.c`, 1, true},
		{0x14, `C:\src\a.c`, 1, false},
	})))
	require.NotNil(t, e.File("C:/src/a.c"))
	assert.Equal(t, "C:/src/a.c", e.Files()[0].URI)
}

func TestEngineAbsorb(t *testing.T) {
	a := NewEngine(nil)
	require.NoError(t, a.Consume(Events([]Event{
		{0x10, "x.c", 1, true},
		{0x20, "x.c", 1, false},
	})))
	b := NewEngine(nil)
	require.NoError(t, b.Consume(Events([]Event{
		{0x20, "x.c", 1, true},
		{0x30, "y.c", 2, true},
		{0x34, "y.c", 2, false},
	})))

	a.Absorb(b)
	x := a.File("x.c")
	require.NotNil(t, x)
	assert.EqualValues(t, 0x20, x.Total)
	assert.Len(t, x.Line(1).Places, 2)
	assert.EqualValues(t, 4, a.File("y.c").Total)
	assert.EqualValues(t, 5, a.Stats().Events)

	MergeRanges(a.Files())
	assert.Equal(t, []Interval{{0x10, 0x20}}, x.Line(1).Places)
	assert.EqualValues(t, 0x20, x.Line(1).Total)
}
