package blame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeFiles() []*File {
	a := NewFile("/src/lib/a.c")
	a.Add(1, 0, 10)
	b := NewFile("/src/lib/b.c")
	b.Add(1, 10, 5)
	b.Add(2, 15, 5)
	m := NewFile("src/main.c")
	m.Add(9, 20, 7)
	return []*File{a, b, m}
}

func TestBuildTreeTotals(t *testing.T) {
	root, err := BuildTree(treeFiles())
	require.NoError(t, err)

	assert.EqualValues(t, 27, root.Total())
	src := root.Children["src"]
	require.NotNil(t, src)
	assert.EqualValues(t, 27, src.Total())
	assert.EqualValues(t, 20, src.Children["lib"].Total())
	assert.False(t, src.Children["main.c"].IsDir())

	root.Walk(func(p string, n *Node) {
		if !n.IsDir() {
			return
		}
		var sum uint64
		for _, c := range n.Children {
			sum += c.Total()
		}
		assert.Equal(t, sum, n.Total(), p)
	})
}

func TestBuildTreeCollision(t *testing.T) {
	_, err := BuildTree([]*File{NewFile("/a/b.c"), NewFile("a/b.c")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNameCollision))

	_, err = BuildTree([]*File{NewFile("/a/b"), NewFile("/a/b/c.c")})
	assert.True(t, errors.Is(err, ErrNameCollision))

	_, err = BuildTree([]*File{NewFile("/a/b/c.c"), NewFile("/a/b")})
	assert.True(t, errors.Is(err, ErrNameCollision))
}

func TestTreeDu(t *testing.T) {
	root, err := BuildTree(treeFiles())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, root.Du(&buf, false))
	assert.Equal(t, "20\t/src/lib\n27\t/src\n27\t/\n", buf.String())

	buf.Reset()
	require.NoError(t, root.Du(&buf, true))
	assert.Equal(t, "10\t/src/lib/a.c\n10\t/src/lib/b.c\n20\t/src/lib\n7\t/src/main.c\n27\t/src\n27\t/\n", buf.String())
}

func TestTreeFlat(t *testing.T) {
	root, err := BuildTree(treeFiles())
	require.NoError(t, err)
	assert.Equal(t, []DirTotal{{"/", 27}, {"/src", 27}, {"/src/lib", 20}}, root.Flat())
}
