package render

import (
	"testing"

	"github.com/jcdickinson/docdeck/internal/docs"
)

func kinds(p Page) []Kind {
	out := make([]Kind, len(p.Instructions))
	for i, in := range p.Instructions {
		out[i] = in.Kind
	}
	return out
}

func buildTree(t *testing.T) *docs.Tree {
	t.Helper()
	tree, err := docs.ParseProject([]byte(`{"sections": [
		{"title": "A", "content": [
			{"type": "header", "value": "<b>Head</b>"},
			{"type": "text", "value": ["one ", "two"]},
			{"type": "note", "value": "careful"},
			{"type": "tip", "value": ["a", "b"]},
			{"type": "code", "value": ["line1", "line2"]},
			{"type": "image", "src": "pic.png", "align": "right"},
			{"type": "roadmap", "milestones": [{"version": "v1", "date": "Q1", "status": "In Progress", "features": ["f1"]}]},
			{"type": "hologram", "value": "skip me"}
		], "subsections": [{"title": "A1"}, {"title": "A2"}]},
		{"title": "B"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestRender_Dispatch(t *testing.T) {
	t.Parallel()
	tree := buildTree(t)
	a := tree.Roots[0]

	p := Render(a, Context{Nav: tree})
	want := []Kind{
		KindHeader, KindText, KindNote, KindTip, KindCode, KindImage, KindRoadmap,
		KindQuickLink, KindQuickLink, KindNext,
	}
	got := kinds(p)
	if len(got) != len(want) {
		t.Fatalf("got kinds %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d = %s, want %s", i, got[i], want[i])
		}
	}

	in := p.Instructions
	if in[0].Markup != "<b>Head</b>" {
		t.Errorf("header markup = %q", in[0].Markup)
	}
	if in[1].Markup != "one two" {
		t.Errorf("text markup = %q", in[1].Markup)
	}
	if in[3].Markup != "ab" {
		t.Errorf("tip markup = %q", in[3].Markup)
	}
	if in[4].Text != "line1\nline2" || in[4].Markup != "" {
		t.Errorf("code = %+v", in[4])
	}
	if in[5].Src != "pic.png" || in[5].Alt != DefaultImageAlt || in[5].Align != "right" {
		t.Errorf("image = %+v", in[5])
	}
	if ms := in[6].Milestones; len(ms) != 1 || ms[0].Variant != "status-in-progress" {
		t.Errorf("roadmap = %+v", ms)
	}
	if in[7].Title != "A1" || in[7].Target != a.Subsections[0].ID {
		t.Errorf("quick link = %+v", in[7])
	}
	if in[9].Target != a.Subsections[0].ID {
		t.Errorf("next should point at A1, got %+v", in[9])
	}
}

func TestRender_PrevNext(t *testing.T) {
	t.Parallel()
	tree := buildTree(t)
	a2 := tree.Roots[0].Subsections[1]

	p := Render(a2, Context{Nav: tree})
	got := kinds(p)
	if len(got) != 2 || got[0] != KindPrevious || got[1] != KindNext {
		t.Fatalf("kinds = %v", got)
	}
	if p.Instructions[0].Title != "A1" || p.Instructions[1].Title != "B" {
		t.Errorf("prev/next = %+v", p.Instructions)
	}

	last := tree.Roots[1]
	p = Render(last, Context{Nav: tree})
	if got := kinds(p); len(got) != 1 || got[0] != KindPrevious {
		t.Errorf("last section kinds = %v", got)
	}
}

func TestRender_SearchContextHasNoNav(t *testing.T) {
	t.Parallel()
	tree := buildTree(t)

	results := docs.Filter(tree.Roots, "a2")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	p := Render(&results[0].Section, Context{})
	if len(p.Instructions) != 0 {
		t.Errorf("search result page should be empty, got %v", kinds(p))
	}
	if p.Title != "A > A2" {
		t.Errorf("title = %q", p.Title)
	}
}

func TestRender_EmptySection(t *testing.T) {
	t.Parallel()
	p := Render(&docs.Section{Title: "Lonely", ID: "s1"}, Context{})
	if p.Title != "Lonely" || len(p.Instructions) != 0 {
		t.Errorf("page = %+v", p)
	}
}

func TestStatusVariant(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Done":         "status-done",
		"In Progress":  "status-in-progress",
		" Not Started": "status-not-started",
	}
	for in, want := range cases {
		if got := StatusVariant(in); got != want {
			t.Errorf("StatusVariant(%q) = %q, want %q", in, got, want)
		}
	}
}
