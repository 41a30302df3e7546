package docs

import "strings"

// PathSeparator joins ancestor titles in a search result's title.
const PathSeparator = " > "

// Blank reports whether query means "no filter".
func Blank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Filter returns every section whose title or textual content contains query,
// case-insensitively, in pre-order. A matching parent does not hide matching
// descendants; each match is its own flat result. Blank queries return nil:
// callers show the unfiltered tree instead.
func Filter(roots []*Section, query string) []SearchResult {
	if Blank(query) {
		return nil
	}
	q := strings.ToLower(query)

	var results []SearchResult
	var visit func(sections []*Section, path []string)
	visit = func(sections []*Section, path []string) {
		for _, s := range sections {
			if s == nil {
				continue
			}
			p := make([]string, len(path)+1)
			copy(p, path)
			p[len(path)] = s.Title

			if Matches(s, q) {
				proj := Section{
					Title:   strings.Join(p, PathSeparator),
					Content: s.Content,
					ID:      s.ID,
				}
				results = append(results, SearchResult{Section: proj, Path: p})
			}
			visit(s.Subsections, p)
		}
	}
	visit(roots, nil)
	return results
}

// Matches reports whether the section's title or any textual block contains
// the lower-cased query q.
func Matches(s *Section, q string) bool {
	if strings.Contains(strings.ToLower(s.Title), q) {
		return true
	}
	for _, b := range s.Content {
		if text, ok := SearchText(b); ok && strings.Contains(strings.ToLower(text), q) {
			return true
		}
	}
	return false
}

// SearchText returns the searchable text of a block. Blocks with a string or
// string-array value are searchable; array values are joined with spaces.
// Images and roadmaps are not.
func SearchText(b Block) (string, bool) {
	var x textExtractor
	b.Accept(&x)
	return x.text, x.ok
}

type textExtractor struct {
	text string
	ok   bool
}

func (x *textExtractor) set(l Lines) {
	if l == nil {
		return
	}
	x.text, x.ok = l.Join(" "), true
}

func (x *textExtractor) VisitHeader(b *HeaderBlock)   { x.set(b.Value) }
func (x *textExtractor) VisitText(b *TextBlock)       { x.set(b.Value) }
func (x *textExtractor) VisitNote(b *NoteBlock)       { x.set(b.Value) }
func (x *textExtractor) VisitTip(b *TipBlock)         { x.set(b.Value) }
func (x *textExtractor) VisitCode(b *CodeBlock)       { x.set(b.Value) }
func (x *textExtractor) VisitImage(*ImageBlock)       {}
func (x *textExtractor) VisitRoadmap(*RoadmapBlock)   {}
func (x *textExtractor) VisitUnknown(b *UnknownBlock) { x.set(b.Value) }
