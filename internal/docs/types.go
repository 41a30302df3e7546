package docs

// ID identifies a section within one loaded project. IDs are assigned by
// NewTree and are only meaningful for the tree that assigned them.
type ID string

// Section is one node of a documentation tree.
type Section struct {
	Title       string     `json:"title"`
	Content     Content    `json:"content,omitempty"`
	Subsections []*Section `json:"subsections,omitempty"`
	ID          ID         `json:"-"`
}

// HasSubsections reports whether the section has at least one child.
func (s *Section) HasSubsections() bool {
	return len(s.Subsections) > 0
}

// Project is the top-level structure of a project document.
type Project struct {
	Sections []*Section `json:"sections"`
}

// ProjectInfo is one entry of the project index document.
type ProjectInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Path        string `json:"path"`
}

// SearchResult is a flattened projection of a matching section. Title holds
// the ancestor-qualified path, Subsections is always empty, and Content and ID
// are those of the original section.
type SearchResult struct {
	Section
	Path []string
}
