package docs

import (
	"testing"
)

const sampleProject = `{
  "sections": [
    {
      "title": "A",
      "content": [{"type": "text", "value": "Intro"}],
      "subsections": [
        {"title": "A1"},
        {
          "title": "A2",
          "subsections": [
            {"title": "Setup", "content": [{"type": "code", "value": ["run", "install steps"]}]}
          ]
        }
      ]
    },
    {"title": "B", "content": []}
  ]
}`

func mustParse(t *testing.T, doc string) *Tree {
	t.Helper()
	tree, err := ParseProject([]byte(doc))
	if err != nil {
		t.Fatalf("parsing project: %v", err)
	}
	return tree
}

func titles(sections []*Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLinearize_PreOrder(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)

	got := titles(tree.Order())
	want := []string{"A", "A1", "A2", "Setup", "B"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if tree.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tree.Len())
	}
}

func TestLinearize_DescendantsContiguous(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)
	order := tree.Order()

	var count func(s *Section) int
	count = func(s *Section) int {
		n := 1
		for _, c := range s.Subsections {
			n += count(c)
		}
		return n
	}

	for i, s := range order {
		size := count(s)
		seen := make(map[ID]bool)
		for _, d := range order[i+1 : i+size] {
			seen[d.ID] = true
		}
		var check func(*Section)
		check = func(n *Section) {
			for _, c := range n.Subsections {
				if !seen[c.ID] {
					t.Errorf("descendant %q of %q is not contiguous after it", c.Title, s.Title)
				}
				check(c)
			}
		}
		check(s)
	}
}

func TestNewTree_AssignsUniqueStableIDs(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)

	seen := make(map[ID]bool)
	for _, s := range tree.Order() {
		if s.ID == "" {
			t.Fatalf("section %q has no ID", s.Title)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate ID %q", s.ID)
		}
		seen[s.ID] = true
	}

	before := make([]ID, 0, tree.Len())
	for _, s := range tree.Order() {
		before = append(before, s.ID)
	}
	// Linearizing again must not reassign.
	again := Linearize(tree.Roots)
	for i, s := range again {
		if s.ID != before[i] {
			t.Errorf("ID of %q changed from %q to %q", s.Title, before[i], s.ID)
		}
	}

	// The same document always produces the same IDs.
	other := mustParse(t, sampleProject)
	for i, s := range other.Order() {
		if s.ID != before[i] {
			t.Errorf("second load gave %q ID %q, want %q", s.Title, s.ID, before[i])
		}
	}
}

func TestNewTree_KeepsExistingIDs(t *testing.T) {
	t.Parallel()
	roots := []*Section{
		{Title: "x", ID: "s2"},
		{Title: "y"},
		{Title: "z"},
	}
	tree := NewTree(roots)
	if roots[0].ID != "s2" {
		t.Errorf("existing ID overwritten: %q", roots[0].ID)
	}
	if roots[1].ID == "s2" || roots[2].ID == "s2" || roots[1].ID == roots[2].ID {
		t.Errorf("assigned IDs collide: %q %q", roots[1].ID, roots[2].ID)
	}
	if tree.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tree.Len())
	}
}

func TestTree_Navigation(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)
	order := tree.Order()
	setup := order[3]

	prev, ok := tree.Previous(setup.ID)
	if !ok || prev.Title != "A2" {
		t.Fatalf("Previous(Setup) = %v, %v", prev, ok)
	}
	prev, ok = tree.Previous(prev.ID)
	if !ok || prev.Title != "A1" {
		t.Fatalf("Previous(A2) = %v, %v", prev, ok)
	}

	if _, ok := tree.Previous(order[0].ID); ok {
		t.Error("Previous at first section should fail")
	}
	if _, ok := tree.Next(order[len(order)-1].ID); ok {
		t.Error("Next at last section should fail")
	}
	if _, ok := tree.Next("missing"); ok {
		t.Error("Next for unknown ID should fail")
	}

	for _, s := range order[:len(order)-1] {
		n, _ := tree.Next(s.ID)
		p, ok := tree.Previous(n.ID)
		if !ok || p.ID != s.ID {
			t.Errorf("Previous(Next(%q)) = %v", s.Title, p)
		}
	}
}

func TestTree_Ancestors(t *testing.T) {
	t.Parallel()
	tree := mustParse(t, sampleProject)
	order := tree.Order()

	got := tree.Ancestors(order[3].ID)
	want := []ID{order[2].ID, order[0].ID}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Ancestors(Setup) = %v, want %v", got, want)
	}
	if got := tree.Ancestors(order[0].ID); len(got) != 0 {
		t.Errorf("root should have no ancestors, got %v", got)
	}
}

func TestParseProject_EmptyAndInvalid(t *testing.T) {
	t.Parallel()

	t.Run("no_sections", func(t *testing.T) {
		tree := mustParse(t, `{}`)
		if tree.Len() != 0 {
			t.Errorf("Len() = %d, want 0", tree.Len())
		}
		if _, ok := tree.First(); ok {
			t.Error("First() should fail on an empty tree")
		}
	})

	t.Run("invalid_json", func(t *testing.T) {
		if _, err := ParseProject([]byte(`{"sections": [`)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestParseIndex_FindProject(t *testing.T) {
	t.Parallel()
	projects, err := ParseIndex([]byte(`[
		{"title": "Alpha", "description": "first", "image": "a.png", "path": "alpha.json"},
		{"title": "Beta", "description": "second", "image": "b.png", "path": "beta.json"}
	]`))
	if err != nil {
		t.Fatal(err)
	}

	if p, ok := FindProject(projects, "beta.json"); !ok || p.Title != "Beta" {
		t.Errorf("lookup by path: %v %v", p, ok)
	}
	if p, ok := FindProject(projects, "alpha"); !ok || p.Path != "alpha.json" {
		t.Errorf("lookup by title: %v %v", p, ok)
	}
	if _, ok := FindProject(projects, "gamma"); ok {
		t.Error("unexpected match for gamma")
	}
}
