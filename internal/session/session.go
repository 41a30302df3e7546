package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/render"
)

var (
	ErrNoProject      = errors.New("no project loaded")
	ErrUnknownSection = errors.New("unknown section")
)

// Session is the viewing state of one user: the loaded project, the selected
// section, which tree entries are expanded, and the active search. It is not
// safe for concurrent use; callers serialize access.
type Session struct {
	gen     uint64
	pending string
	loadErr error

	path     string
	tree     *docs.Tree
	selected docs.ID
	explicit bool
	expanded map[docs.ID]bool

	query   string
	results []docs.SearchResult
}

func New() *Session {
	return &Session{expanded: make(map[docs.ID]bool)}
}

// BeginLoad records a new load request for path and returns its generation.
// Only the most recently issued generation may be applied.
func (s *Session) BeginLoad(path string) uint64 {
	s.gen++
	s.pending = path
	return s.gen
}

// Apply installs a freshly fetched project if gen is still current. The
// previous tree, selection, expansion state and search are discarded, and
// the first section is selected. It reports whether the project was applied.
func (s *Session) Apply(gen uint64, path string, tree *docs.Tree) bool {
	if gen != s.gen {
		slog.Debug("discarding stale project load", "path", path, "generation", gen, "latest", s.gen)
		return false
	}
	s.pending = ""
	s.loadErr = nil
	s.path = path
	s.tree = tree
	s.selected = ""
	s.explicit = false
	s.expanded = make(map[docs.ID]bool)
	s.query = ""
	s.results = nil
	s.autoSelect()
	return true
}

// Fail records a failed load if gen is still current.
func (s *Session) Fail(gen uint64, path string, err error) bool {
	if gen != s.gen {
		return false
	}
	s.pending = ""
	s.loadErr = fmt.Errorf("loading %s: %w", path, err)
	return true
}

// Loading returns the path of the outstanding load, if any.
func (s *Session) Loading() (string, bool) {
	return s.pending, s.pending != ""
}

// Err returns the error of the last failed load, until the next successful
// load or selection.
func (s *Session) Err() error {
	return s.loadErr
}

func (s *Session) Path() string {
	return s.path
}

func (s *Session) Tree() *docs.Tree {
	return s.tree
}

// Selected returns the selected section ID, if any.
func (s *Session) Selected() (docs.ID, bool) {
	return s.selected, s.selected != ""
}

// Expanded reports whether the tree entry for id is open.
func (s *Session) Expanded(id docs.ID) bool {
	return s.expanded[id]
}

// Select makes id the selection, opens every ancestor of it, and returns the
// page for it. Selection and page are produced together so what is
// highlighted and what is shown never disagree.
func (s *Session) Select(id docs.ID) (render.Page, error) {
	if s.tree == nil {
		return render.Page{}, ErrNoProject
	}
	if _, ok := s.tree.Section(id); !ok {
		return render.Page{}, fmt.Errorf("%w: %s", ErrUnknownSection, id)
	}
	s.selectID(id)
	s.explicit = true
	return s.Page(), nil
}

func (s *Session) selectID(id docs.ID) {
	s.selected = id
	s.loadErr = nil
	for _, a := range s.tree.Ancestors(id) {
		s.expanded[a] = true
	}
}

// Next moves the selection to the following section in reading order. It is
// a no-op at the end, for a stale selection, and while a search is active.
func (s *Session) Next() (render.Page, bool) {
	return s.step((*docs.Tree).Next)
}

// Previous moves the selection to the preceding section in reading order,
// with the same no-op rules as Next.
func (s *Session) Previous() (render.Page, bool) {
	return s.step((*docs.Tree).Previous)
}

func (s *Session) step(move func(*docs.Tree, docs.ID) (*docs.Section, bool)) (render.Page, bool) {
	if s.tree == nil || s.Searching() {
		return render.Page{}, false
	}
	target, ok := move(s.tree, s.selected)
	if !ok {
		return render.Page{}, false
	}
	s.selectID(target.ID)
	s.explicit = true
	return s.Page(), true
}

// Toggle flips the expansion of a tree entry without changing the selection.
func (s *Session) Toggle(id docs.ID) error {
	if s.tree == nil {
		return ErrNoProject
	}
	sec, ok := s.tree.Section(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, id)
	}
	if !sec.HasSubsections() {
		return nil
	}
	s.expanded[id] = !s.expanded[id]
	return nil
}

// Search sets the query. A blank query clears the search and restores the
// tree, selecting the first section unless the user has chosen one.
func (s *Session) Search(query string) []docs.SearchResult {
	if s.tree == nil {
		return nil
	}
	if docs.Blank(query) {
		s.query = ""
		s.results = nil
		if !s.explicit || !s.valid(s.selected) {
			s.autoSelect()
		}
		return nil
	}
	s.query = query
	s.results = docs.Filter(s.tree.Roots, query)
	return s.results
}

// Searching reports whether a non-blank query is active.
func (s *Session) Searching() bool {
	return s.query != ""
}

func (s *Session) Query() string {
	return s.query
}

func (s *Session) Results() []docs.SearchResult {
	return s.results
}

func (s *Session) valid(id docs.ID) bool {
	if id == "" || s.tree == nil {
		return false
	}
	_, ok := s.tree.Section(id)
	return ok
}

func (s *Session) autoSelect() {
	s.selected = ""
	s.explicit = false
	if first, ok := s.tree.First(); ok {
		s.selectID(first.ID)
	}
}

// Page renders the current state: the loading or error notice, the selected
// section, or an empty-state notice. While searching, a selected result is
// rendered as its flattened projection without previous/next links.
func (s *Session) Page() render.Page {
	if path, ok := s.Loading(); ok {
		return render.Notice("Loading", fmt.Sprintf("Loading %s...", path))
	}
	if s.loadErr != nil {
		return render.Notice("Error", s.loadErr.Error())
	}
	if s.tree == nil {
		return render.Notice("docdeck", "No project loaded.")
	}
	if s.Searching() {
		for i := range s.results {
			if s.results[i].ID == s.selected {
				return render.Render(&s.results[i].Section, render.Context{})
			}
		}
		if len(s.results) == 0 {
			return render.Notice("Search", "No results.")
		}
	}
	sec, ok := s.tree.Section(s.selected)
	if !ok {
		return render.Notice(s.path, "No sections found.")
	}
	ctx := render.Context{}
	if !s.Searching() {
		ctx.Nav = s.tree
	}
	return render.Render(sec, ctx)
}
