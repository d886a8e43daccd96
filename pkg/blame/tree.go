package blame

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// ErrNameCollision two files map onto the same tree path.
var ErrNameCollision = errors.New("directory tree name collision")

// Node is a directory (Children != nil) or a leaf wrapping one File.
type Node struct {
	Name     string
	Children map[string]*Node
	File     *File

	total    uint64
	computed bool
}

// DirTotal an internal node's path and total
type DirTotal struct {
	Path  string `json:"path"`
	Total uint64 `json:"total"`
}

func newDir(name string) *Node {
	return &Node{Name: name, Children: make(map[string]*Node)}
}

// IsDir reports whether n is an internal node.
func (n *Node) IsDir() bool {
	return n.File == nil
}

// BuildTree rolls files up by path component. Files are borrowed, not copied.
func BuildTree(files []*File) (*Node, error) {
	root := newDir("")
	for _, f := range files {
		if err := root.insert(f); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (n *Node) insert(f *File) error {
	var parts []string
	for _, p := range strings.Split(strings.TrimLeft(f.URI, "/"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Errorf("%w: empty path %q", ErrNameCollision, f.URI)
	}

	dir := n
	for _, p := range parts[:len(parts)-1] {
		child, ok := dir.Children[p]
		if !ok {
			child = newDir(p)
			dir.Children[p] = child
		}
		if !child.IsDir() {
			return fmt.Errorf("%w: %s is both a file and a directory", ErrNameCollision, child.File.URI)
		}
		dir = child
	}

	leaf := parts[len(parts)-1]
	if old, ok := dir.Children[leaf]; ok {
		if old.IsDir() {
			return fmt.Errorf("%w: %s is both a file and a directory", ErrNameCollision, f.URI)
		}
		return fmt.Errorf("%w: %s and %s", ErrNameCollision, old.File.URI, f.URI)
	}
	dir.Children[leaf] = &Node{Name: leaf, File: f}
	return nil
}

// Total returns the bytes below n, computed once.
func (n *Node) Total() uint64 {
	if n.File != nil {
		return n.File.Total
	}
	if !n.computed {
		for _, c := range n.Children {
			n.total += c.Total()
		}
		n.computed = true
	}
	return n.total
}

// sortedChildren children ordered by name, for reproducible output
func (n *Node) sortedChildren() []*Node {
	kids := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		kids = append(kids, c)
	}
	sort.Slice(kids, func(i, j int) bool {
		return kids[i].Name < kids[j].Name
	})
	return kids
}

// Walk visits n and all nodes below it, children before their parent.
// Paths are rooted at "/".
func (n *Node) Walk(fn func(path string, node *Node)) {
	n.walk("/", fn)
}

func (n *Node) walk(p string, fn func(string, *Node)) {
	for _, c := range n.sortedChildren() {
		c.walk(path.Join(p, c.Name), fn)
	}
	fn(p, n)
}

// Du writes "total<TAB>path" for every directory, and for files too if all.
func (n *Node) Du(w io.Writer, all bool) error {
	var err error
	n.Walk(func(p string, node *Node) {
		if err != nil || (!all && !node.IsDir()) {
			return
		}
		_, err = fmt.Fprintf(w, "%d\t%s\n", node.Total(), p)
	})
	return err
}

// Flat returns every directory ranked by total descending, path ascending.
func (n *Node) Flat() []DirTotal {
	var dirs []DirTotal
	n.Walk(func(p string, node *Node) {
		if node.IsDir() {
			dirs = append(dirs, DirTotal{Path: p, Total: node.Total()})
		}
	})
	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].Total == dirs[j].Total {
			return dirs[i].Path < dirs[j].Path
		}
		return dirs[i].Total > dirs[j].Total
	})
	return dirs
}
