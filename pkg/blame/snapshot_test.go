package blame

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotKeepsOverlapTotals(t *testing.T) {
	f := NewFile("a.c")
	f.Add(1, 0x100, 0x10)
	f.Add(1, 0x108, 0x10)
	f.Merge()
	m := &Model{
		Binary:   "a.out",
		Sections: []Section{{".text", 0x100, 0x100}},
		Files:    []*File{f},
		Stats:    Stats{Events: 3, Attributed: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	got, err := LoadModel(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Binary, got.Binary)
	assert.Equal(t, m.Sections, got.Sections)
	assert.Equal(t, m.Stats, got.Stats)

	l := got.Lookup("a.c", 1)
	require.NotNil(t, l)
	assert.EqualValues(t, 0x20, l.Total)
	assert.EqualValues(t, 0x18, l.Covered())
	assert.EqualValues(t, 0x20, got.TotalBytes())
	seg, ok := got.Segment()
	require.True(t, ok)
	assert.EqualValues(t, 0x100, seg.Start)
}

func TestSnapshotVersion(t *testing.T) {
	_, err := LoadModel(strings.NewReader(`{"version": 99}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSnapshotVersion))
}
