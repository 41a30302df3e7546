package docs

import (
	"strings"
	"testing"
)

func TestFilter_AncestorPath(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)

	results := Filter(tree.Roots, "install")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Title != "A > A2 > Setup" {
		t.Errorf("title = %q", r.Title)
	}
	if r.HasSubsections() {
		t.Error("search result must have no subsections")
	}
	orig, ok := tree.Section(r.ID)
	if !ok || orig.Title != "Setup" {
		t.Errorf("result ID %q does not resolve to the original section", r.ID)
	}
	if len(r.Content) != len(orig.Content) {
		t.Error("result content not preserved")
	}
	if orig.Title != "Setup" {
		t.Error("filter mutated the original title")
	}
}

func TestFilter_EveryMatchIsIndependent(t *testing.T) {
	t.Parallel()
	roots := []*Section{
		{Title: "Guide", Subsections: []*Section{
			{Title: "Guide basics"},
			{Title: "Other", Content: Content{&TextBlock{Value: Lines{"the GUIDE says"}}}},
		}},
	}
	NewTree(roots)

	got := Filter(roots, "guide")
	want := []string{"Guide", "Guide > Guide basics", "Guide > Other"}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.Title != want[i] {
			t.Errorf("result %d = %q, want %q", i, r.Title, want[i])
		}
	}
}

func TestFilter_MatchRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		block   Block
		query   string
		matches bool
	}{
		{"text string", &TextBlock{Value: Lines{"Hello World"}}, "world", true},
		{"array joined with spaces", &TextBlock{Value: Lines{"foo", "bar"}}, "foo bar", true},
		{"array not concatenated", &TextBlock{Value: Lines{"foo", "bar"}}, "foobar", false},
		{"header", &HeaderBlock{Value: Lines{"Getting Started"}}, "started", true},
		{"note", &NoteBlock{Value: Lines{"careful"}}, "CAREFUL", true},
		{"tip", &TipBlock{Value: Lines{"pro tip"}}, "pro", true},
		{"code", &CodeBlock{Value: Lines{"go build"}}, "build", true},
		{"image caption ignored", &ImageBlock{Src: "x.png", Caption: "diagram"}, "diagram", false},
		{"roadmap ignored", &RoadmapBlock{Milestones: []Milestone{{Version: "v2", Features: []string{"search"}}}}, "search", false},
		{"unknown with value", &UnknownBlock{Type: "quote", Value: Lines{"wise words"}}, "wise", true},
		{"unknown without value", &UnknownBlock{Type: "widget"}, "widget", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			roots := []*Section{{Title: "Untitled", Content: Content{tc.block}}}
			NewTree(roots)
			got := len(Filter(roots, tc.query)) == 1
			if got != tc.matches {
				t.Errorf("match = %v, want %v", got, tc.matches)
			}
		})
	}
}

func TestFilter_BlankQuery(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)
	for _, q := range []string{"", "   ", "\t"} {
		if got := Filter(tree.Roots, q); got != nil {
			t.Errorf("Filter(%q) = %v, want nil", q, got)
		}
	}
}

func TestFilter_ExactlyTheMatchingSet(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)

	for _, q := range []string{"a", "in", "setup", "steps", "zzz"} {
		results := Filter(tree.Roots, q)
		got := make(map[ID]int)
		for _, r := range results {
			got[r.ID]++
		}
		for _, s := range tree.Order() {
			want := Matches(s, strings.ToLower(q))
			if want && got[s.ID] != 1 {
				t.Errorf("q=%q: %q appears %d times, want once", q, s.Title, got[s.ID])
			}
			if !want && got[s.ID] != 0 {
				t.Errorf("q=%q: %q should not match", q, s.Title)
			}
		}
	}
}
