package mcp

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/fetch"
	"github.com/jcdickinson/docdeck/internal/rpc"
	"github.com/jcdickinson/docdeck/internal/viewer"
	"github.com/mark3labs/mcp-go/mcp"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	doc, ok := m[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fetch.ErrFetch, uri)
	}
	return []byte(doc), nil
}

// localBackend drives a viewer in-process the way the daemon does.
type localBackend struct {
	v *viewer.Viewer
}

func (b localBackend) Projects(ctx context.Context) (*rpc.ProjectsResponse, error) {
	ps, err := b.v.Projects(ctx)
	return &rpc.ProjectsResponse{Index: b.v.IndexURI(), Projects: ps}, err
}

func (b localBackend) Open(ctx context.Context, project string) (*rpc.ViewResponse, error) {
	uri, err := b.v.ResolveProject(ctx, project)
	if err != nil {
		return nil, err
	}
	view, err := b.v.Open(ctx, uri)
	return &rpc.ViewResponse{View: view}, err
}

func (b localBackend) Select(_ context.Context, id docs.ID) (*rpc.ViewResponse, error) {
	view, err := b.v.Select(id)
	return &rpc.ViewResponse{View: view}, err
}

func (b localBackend) Next(context.Context) (*rpc.ViewResponse, error) {
	view, moved := b.v.Next()
	return &rpc.ViewResponse{View: view, Moved: moved}, nil
}

func (b localBackend) Previous(context.Context) (*rpc.ViewResponse, error) {
	view, moved := b.v.Previous()
	return &rpc.ViewResponse{View: view, Moved: moved}, nil
}

func (b localBackend) Search(_ context.Context, q string) (*rpc.ViewResponse, error) {
	return &rpc.ViewResponse{View: b.v.Search(q)}, nil
}

func (b localBackend) Toggle(_ context.Context, id docs.ID) (*rpc.ViewResponse, error) {
	view, err := b.v.Toggle(id)
	return &rpc.ViewResponse{View: view}, err
}

func (b localBackend) View(context.Context) (*rpc.ViewResponse, error) {
	return &rpc.ViewResponse{View: b.v.Current()}, nil
}

func (b localBackend) Section(_ context.Context, id docs.ID) (*rpc.SectionResponse, error) {
	page, project, err := b.v.Section(id)
	return &rpc.SectionResponse{Project: project, Page: page}, err
}

func newTestServer() *Server {
	f := mapFetcher{
		"/docs/data.json": `[{"title": "Guide", "description": "how to", "path": "guide.json"}]`,
		"/docs/guide.json": `{"sections": [
			{"title": "Intro", "content": [{"type": "text", "value": "Start here."}],
			 "subsections": [{"title": "Install", "content": [{"type": "code", "value": "go install"}]}]},
			{"title": "Usage", "content": [{"type": "image", "src": "img/run.png"}]}
		]}`,
	}
	return newServer(localBackend{v: viewer.New(f, "/docs/data.json")})
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String(), res.IsError
}

func TestTools(t *testing.T) {
	t.Parallel()
	s := newTestServer()

	text, isErr := call(t, s.handleListProjects, nil)
	if isErr || !strings.Contains(text, "**Guide** (/docs/guide.json): how to") {
		t.Errorf("list_projects = %q", text)
	}

	text, isErr = call(t, s.handleOpenProject, map[string]any{"project": "guide"})
	if isErr || !strings.Contains(text, "# Intro") || !strings.Contains(text, "## Sections") {
		t.Errorf("open_project = %q", text)
	}

	text, isErr = call(t, s.handleNavigate, map[string]any{"action": "next"})
	if isErr || !strings.Contains(text, "# Install") {
		t.Errorf("navigate next = %q", text)
	}

	text, isErr = call(t, s.handleSearchSections, map[string]any{"query": "start"})
	if isErr || !strings.Contains(text, `Search: "start" (1 results)`) {
		t.Errorf("search_sections = %q", text)
	}

	text, _ = call(t, s.handleNavigate, map[string]any{"action": "previous"})
	if !strings.Contains(text, "No previous section") {
		t.Errorf("previous while searching = %q", text)
	}
}

func TestTools_Errors(t *testing.T) {
	t.Parallel()
	s := newTestServer()

	if _, isErr := call(t, s.handleOpenProject, map[string]any{}); !isErr {
		t.Error("open_project without project should fail")
	}
	if _, isErr := call(t, s.handleNavigate, map[string]any{"action": "select"}); !isErr {
		t.Error("select without id should fail")
	}
	if _, isErr := call(t, s.handleNavigate, map[string]any{"action": "jump"}); !isErr {
		t.Error("unknown action should fail")
	}
	if _, isErr := call(t, s.handleNavigate, map[string]any{"action": "select", "id": "s1"}); !isErr {
		t.Error("select with no project should fail")
	}
}

func TestReadResource(t *testing.T) {
	t.Parallel()
	s := newTestServer()
	call(t, s.handleOpenProject, map[string]any{"project": "Guide"})

	// Find the id of "Usage" from the tree.
	view, _ := s.client.View(context.Background())
	var usage docs.ID
	for _, e := range view.View.Sidebar {
		if e.Title == "Usage" {
			usage = e.ID
		}
	}

	var req mcp.ReadResourceRequest
	req.Params.URI = "docdeck://section/" + string(usage)
	contents, err := s.handleReadResource(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	for _, want := range []string{"id: " + string(usage), "# Usage", "![Doc Image](/docs/img/run.png)"} {
		if !strings.Contains(text, want) {
			t.Errorf("resource missing %q:\n%s", want, text)
		}
	}

	req.Params.URI = "other://x"
	if _, err := s.handleReadResource(context.Background(), req); err == nil {
		t.Error("foreign URI should fail")
	}
}

// staleView reports a different project than the one sections come from.
type staleView struct {
	localBackend
}

func (b staleView) View(context.Context) (*rpc.ViewResponse, error) {
	view := b.v.Current()
	view.Project = "/elsewhere/other.json"
	return &rpc.ViewResponse{View: view}, nil
}

func TestReadResource_UsesSectionProject(t *testing.T) {
	t.Parallel()
	local := newTestServer().client.(localBackend)
	s := newServer(staleView{local})
	call(t, s.handleOpenProject, map[string]any{"project": "Guide"})

	resp, err := local.Section(context.Background(), "s3")
	if err != nil || resp.Page.Title != "Usage" {
		t.Fatalf("section s3 = %+v, %v", resp, err)
	}

	var req mcp.ReadResourceRequest
	req.Params.URI = "docdeck://section/s3"
	contents, err := s.handleReadResource(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(text, "/docs/img/run.png") || strings.Contains(text, "/elsewhere/") {
		t.Errorf("image resolved against the wrong project:\n%s", text)
	}
}
