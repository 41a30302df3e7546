package docs

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Tree is a loaded project's section tree together with the indexes needed
// for navigation: nodes by ID, parent links, and the reading order.
type Tree struct {
	Roots []*Section

	byID   map[ID]*Section
	parent map[ID]ID
	order  []*Section
	rank   map[ID]int
}

// ParseProject decodes a project document and builds its tree.
func ParseProject(data []byte) (*Tree, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling project document: %w", err)
	}
	return NewTree(p.Sections), nil
}

// NewTree assigns an ID to every section that lacks one and indexes the tree.
// IDs are a pre-order counter, so the same document always yields the same IDs.
// Sections that already carry an ID keep it.
func NewTree(roots []*Section) *Tree {
	t := &Tree{
		Roots:  roots,
		byID:   make(map[ID]*Section),
		parent: make(map[ID]ID),
		rank:   make(map[ID]int),
	}
	t.order = Linearize(roots)
	for i, s := range t.order {
		t.byID[s.ID] = s
		t.rank[s.ID] = i
	}
	var walk func(parent ID, list []*Section)
	walk = func(parent ID, list []*Section) {
		for _, s := range list {
			if s == nil {
				continue
			}
			if parent != "" {
				t.parent[s.ID] = parent
			}
			walk(s.ID, s.Subsections)
		}
	}
	walk("", roots)
	return t
}

// Linearize flattens sections into reading order: each section, then all of
// its descendants, then its next sibling. Sections without an ID are assigned
// one as they are visited; existing IDs are left alone.
func Linearize(roots []*Section) []*Section {
	var list []*Section
	a := newAssigner(roots)
	var visit func([]*Section)
	visit = func(sections []*Section) {
		for _, s := range sections {
			if s == nil {
				continue
			}
			a.assign(s)
			list = append(list, s)
			visit(s.Subsections)
		}
	}
	visit(roots)
	return list
}

// assigner hands out "s<n>" IDs that do not collide with IDs already present.
type assigner struct {
	next  int
	taken map[ID]bool
}

func newAssigner(roots []*Section) *assigner {
	a := &assigner{taken: make(map[ID]bool)}
	var walk func([]*Section)
	walk = func(sections []*Section) {
		for _, s := range sections {
			if s == nil {
				continue
			}
			if s.ID != "" {
				a.taken[s.ID] = true
			}
			walk(s.Subsections)
		}
	}
	walk(roots)
	return a
}

func (a *assigner) assign(s *Section) {
	if s.ID != "" {
		return
	}
	for {
		a.next++
		id := ID("s" + strconv.Itoa(a.next))
		if !a.taken[id] {
			a.taken[id] = true
			s.ID = id
			return
		}
	}
}

// Order returns the reading order computed when the tree was built.
func (t *Tree) Order() []*Section {
	return t.order
}

// Len returns the total number of sections in the tree.
func (t *Tree) Len() int {
	return len(t.order)
}

// Section returns the section with the given ID.
func (t *Tree) Section(id ID) (*Section, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// Rank returns the position of id in the reading order.
func (t *Tree) Rank(id ID) (int, bool) {
	r, ok := t.rank[id]
	return r, ok
}

// Parent returns the ID of the section's parent, or false for a root.
func (t *Tree) Parent(id ID) (ID, bool) {
	p, ok := t.parent[id]
	return p, ok
}

// Ancestors returns the IDs of every ancestor of id, nearest first.
func (t *Tree) Ancestors(id ID) []ID {
	var out []ID
	for {
		p, ok := t.parent[id]
		if !ok {
			return out
		}
		out = append(out, p)
		id = p
	}
}

// Previous returns the section before id in reading order.
func (t *Tree) Previous(id ID) (*Section, bool) {
	r, ok := t.rank[id]
	if !ok || r == 0 {
		return nil, false
	}
	return t.order[r-1], true
}

// Next returns the section after id in reading order.
func (t *Tree) Next(id ID) (*Section, bool) {
	r, ok := t.rank[id]
	if !ok || r >= len(t.order)-1 {
		return nil, false
	}
	return t.order[r+1], true
}

// First returns the first section in reading order.
func (t *Tree) First() (*Section, bool) {
	if len(t.order) == 0 {
		return nil, false
	}
	return t.order[0], true
}
