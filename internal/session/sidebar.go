package session

import "github.com/jcdickinson/docdeck/internal/docs"

// Entry is one row of the section list. In tree mode rows below a collapsed
// entry are omitted; in search mode every result is a flat row.
type Entry struct {
	ID          docs.ID `json:"id"`
	Title       string  `json:"title"`
	Depth       int     `json:"depth"`
	HasChildren bool    `json:"has_children,omitempty"`
	Expanded    bool    `json:"expanded,omitempty"`
	Selected    bool    `json:"selected,omitempty"`
	// Nested marks a selected entry that sits inside a sublist.
	Nested bool `json:"nested,omitempty"`
}

// Sidebar lists the entries a presentation layer should draw. It is empty
// when there is no project, no sections, or no search results.
func (s *Session) Sidebar() []Entry {
	if s.tree == nil {
		return nil
	}
	if s.Searching() {
		out := make([]Entry, 0, len(s.results))
		for _, r := range s.results {
			out = append(out, Entry{ID: r.ID, Title: r.Title, Selected: r.ID == s.selected})
		}
		return out
	}

	var out []Entry
	var walk func(sections []*docs.Section, depth int)
	walk = func(sections []*docs.Section, depth int) {
		for _, sec := range sections {
			if sec == nil {
				continue
			}
			e := Entry{
				ID:          sec.ID,
				Title:       sec.Title,
				Depth:       depth,
				HasChildren: sec.HasSubsections(),
				Expanded:    s.expanded[sec.ID],
				Selected:    sec.ID == s.selected,
			}
			e.Nested = e.Selected && depth > 0
			out = append(out, e)
			if e.HasChildren && e.Expanded {
				walk(sec.Subsections, depth+1)
			}
		}
	}
	walk(s.tree.Roots, 0)
	return out
}
