// tree.go

// Package tree models a vampire lineage: every vampire is created by at most
// one other vampire, so the whole family forms a rooted tree.
//
// A Tree is built by a single writer with New and AddChild. Once built it may
// be queried from several goroutines; concurrent mutation is not supported.
package tree

import (
	"errors"
	"fmt"
)

// MillennialYear is the conversion year after which a vampire counts as a millennial.
const MillennialYear = 1980

// ErrDisjointTrees is returned when two vampires do not share an original vampire.
var ErrDisjointTrees = errors.New("vampires belong to different trees")

type Tree struct {
	Name     string
	Year     int
	Parent   *Tree
	Children []*Tree
	Metadata map[string]interface{}
}

func New(name string, year int) *Tree {
	return &Tree{
		Name:     name,
		Year:     year,
		Metadata: make(map[string]interface{}),
	}
}

// AddChild appends child to t's offspring and makes t its creator. The caller
// must make sure child is not already attached to another vampire.
func (t *Tree) AddChild(child *Tree) {
	t.Children = append(t.Children, child)
	child.Parent = t
}

func (t *Tree) ChildCount() int {
	return len(t.Children)
}

func (t *Tree) IsRoot() bool {
	return t.Parent == nil
}

func (t *Tree) IsLeaf() bool {
	return len(t.Children) == 0
}

// Root returns the original vampire of t's tree.
func (t *Tree) Root() *Tree {
	curr := t
	for curr.Parent != nil {
		curr = curr.Parent
	}
	return curr
}

// DepthFromRoot returns the number of vampires between t and the original vampire.
func (t *Tree) DepthFromRoot() int {
	depth := 0
	for curr := t; curr.Parent != nil; curr = curr.Parent {
		depth++
	}
	return depth
}

// IsMoreSeniorThan reports whether t is closer to the original vampire than
// other. Only depth is compared; the two need not be related.
func (t *Tree) IsMoreSeniorThan(other *Tree) bool {
	return t.DepthFromRoot() < other.DepthFromRoot()
}

// Walk visits t and its descendants depth first, parents before children.
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(*Tree) bool) {
	walk(t, fn)
}

func walk(t *Tree, fn func(*Tree) bool) bool {
	if !fn(t) {
		return false
	}
	for _, c := range t.Children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// FindByName returns the vampire called name in t's subtree, t included, or
// nil. An unnamed t never matches anything.
func (t *Tree) FindByName(name string) *Tree {
	if t.Name == "" {
		return nil
	}
	var found *Tree
	t.Walk(func(n *Tree) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// CountDescendants returns the number of vampires below t, excluding t.
func (t *Tree) CountDescendants() int {
	count := 0
	for _, c := range t.Children {
		count += 1 + c.CountDescendants()
	}
	return count
}

// Collect returns every vampire in t's subtree, t included, that satisfies pred.
func (t *Tree) Collect(pred func(*Tree) bool) []*Tree {
	var result []*Tree
	t.Walk(func(n *Tree) bool {
		if pred(n) {
			result = append(result, n)
		}
		return true
	})
	return result
}

// ConvertedAfter returns the vampires in t's subtree converted strictly after year.
func (t *Tree) ConvertedAfter(year int) []*Tree {
	return t.Collect(func(n *Tree) bool {
		return n.Year > year
	})
}

func (t *Tree) Millennials() []*Tree {
	return t.ConvertedAfter(MillennialYear)
}

// ClosestCommonAncestor returns the deepest vampire that is an ancestor of
// both t and other. A vampire counts as its own ancestor, so when one of the
// two descends from the other the senior one is returned.
func (t *Tree) ClosestCommonAncestor(other *Tree) (*Tree, error) {
	root := t.Root()
	if root != other.Root() {
		return nil, ErrDisjointTrees
	}
	if t.Parent == nil || other.Parent == nil {
		return root, nil
	}

	curr, currDepth := t, t.DepthFromRoot()
	oth, othDepth := other, other.DepthFromRoot()
	for currDepth > othDepth {
		curr = curr.Parent
		currDepth--
	}
	for othDepth > currDepth {
		oth = oth.Parent
		othDepth--
	}

	if curr == oth {
		return curr, nil
	}
	for curr.Parent != oth.Parent {
		curr = curr.Parent
		oth = oth.Parent
	}
	return curr.Parent, nil
}

func (t *Tree) String() string {
	return fmt.Sprintf("%v (%v)", t.Name, t.Year)
}
