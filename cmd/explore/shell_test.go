package explore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitzhangjie/codesize/pkg/blame"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	dir := t.TempDir()
	src := filepath.Join(dir, "lib", "a.c")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, []byte("int a;\nint f() {\n  return a;\n}\n"), 0644))

	a := blame.NewFile(src)
	a.Add(2, 0x1000, 4)
	a.Add(3, 0x1004, 10)
	a.Add(3, 0x1008, 10) // overlapping row
	a.Merge()
	b := blame.NewFile(filepath.Join(dir, "main.c"))
	b.Add(7, 0x1100, 30)

	s := NewSession(&blame.Model{Binary: "", Files: []*blame.File{a, b}})
	CurrentSession = s

	var out bytes.Buffer
	exploreRootCmd.SetOut(&out)
	exploreRootCmd.SetErr(&out)
	t.Cleanup(func() {
		exploreRootCmd.SetOut(nil)
		exploreRootCmd.SetErr(nil)
	})
	return s, &out
}

func TestSessionSummaries(t *testing.T) {
	s, out := newTestSession(t)

	require.NoError(t, s.Exec("files"))
	assert.Contains(t, out.String(), "FILE SUMMARY (out of 2 files)")
	assert.Less(t, strings.Index(out.String(), "main.c"), strings.Index(out.String(), "a.c:"))

	out.Reset()
	require.NoError(t, s.Exec("lines", "1"))
	assert.Contains(t, out.String(), "main.c:7:")
	assert.NotContains(t, out.String(), "a.c:3:")

	out.Reset()
	require.Error(t, s.Exec("lines", "zero"))

	out.Reset()
	require.NoError(t, s.Exec("du"))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, "54\t/", lines[len(lines)-1])

	out.Reset()
	require.NoError(t, s.Exec("dirs", "1"))
	assert.Equal(t, []string{"54", "/"}, strings.Fields(out.String()))
}

func TestSessionPlaces(t *testing.T) {
	s, out := newTestSession(t)

	require.NoError(t, s.Exec("places", "lib/a.c:3"))
	assert.Contains(t, out.String(), "20 bytes in 1 places")
	assert.Contains(t, out.String(), "14 bytes covered, 6 bytes overlap")
	assert.Contains(t, out.String(), "1004..1012")

	assert.Error(t, s.Exec("places", "lib/a.c:1"))
	assert.Error(t, s.Exec("places", "nope.c:1"))
	assert.Error(t, s.Exec("places", "a.c"))
}

func TestSessionList(t *testing.T) {
	s, out := newTestSession(t)

	require.NoError(t, s.Exec("list", "-n", "1", "a.c:3"))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"2", "4", "|", "int", "f()", "{"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"=>", "3", "20", "|", "return", "a;"}, strings.Fields(lines[1]))

	out.Reset()
	require.NoError(t, s.Exec("list", "a.c:3"))
	lines = strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Greater(t, len(lines), 3, "range from the previous command stuck")

	f, err := s.model.FindFile("a.c")
	require.NoError(t, err)
	_, ok := s.sources.Get(f.URI)
	assert.True(t, ok)
}

func TestSessionDisassNeedsBinary(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Error(t, s.Exec("disass", "a.c:3"))
}

func TestSessionExit(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Exec("exit"))
	require.NoError(t, s.Exec("quit"))

	select {
	case <-s.done:
	default:
		t.Fatal("session not stopped")
	}
}

func TestHelpMessageByGroups(t *testing.T) {
	msg := helpMessageByGroups(exploreRootCmd)
	summary := strings.Index(msg, "- [summary]")
	source := strings.Index(msg, "- [source]")
	other := strings.Index(msg, "- [other]")
	require.True(t, summary >= 0 && source > summary && other > source, msg)
	assert.Contains(t, msg, "files")
	assert.Contains(t, msg, "disass")
}

func TestCompleter(t *testing.T) {
	assert.ElementsMatch(t, []string{"dirs", "disass", "dis", "disassemble"}, completer("di"))
	assert.ElementsMatch(t, []string{"exit"}, completer("ex"))
	assert.Empty(t, completer("zz"))
}

func TestResetFlags(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Exec("list", "--range", "2", "a.c:3"))

	f := listCmd.Flags().Lookup("range")
	assert.Equal(t, "5", f.Value.String())
	assert.False(t, f.Changed)
}
