package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jcdickinson/docdeck/internal/daemon"
	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/present"
	"github.com/jcdickinson/docdeck/internal/rpc"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

//go:embed instructions.md
var instructions string

// Backend is the daemon surface the MCP tools drive.
type Backend interface {
	Projects(ctx context.Context) (*rpc.ProjectsResponse, error)
	Open(ctx context.Context, project string) (*rpc.ViewResponse, error)
	Select(ctx context.Context, id docs.ID) (*rpc.ViewResponse, error)
	Next(ctx context.Context) (*rpc.ViewResponse, error)
	Previous(ctx context.Context) (*rpc.ViewResponse, error)
	Search(ctx context.Context, query string) (*rpc.ViewResponse, error)
	Toggle(ctx context.Context, id docs.ID) (*rpc.ViewResponse, error)
	View(ctx context.Context) (*rpc.ViewResponse, error)
	Section(ctx context.Context, id docs.ID) (*rpc.SectionResponse, error)
}

type Server struct {
	mcpServer *server.MCPServer
	client    Backend
}

func NewServer(socketPath string) (*Server, error) {
	client, err := daemon.ConnectOrSpawn(socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}
	return newServer(client), nil
}

func newServer(client Backend) *Server {
	s := &Server{client: client}

	mcpServer := server.NewMCPServer(
		"docdeck",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("list_projects",
			mcp.WithDescription("List the documentation projects in the configured index, with title, description and path."),
		),
		s.handleListProjects,
	)

	mcpServer.AddTool(
		mcp.NewTool("open_project",
			mcp.WithDescription("Open a documentation project by title or path. Replaces the active project and clears any search. Returns the section tree and the first section."),
			mcp.WithString("project",
				mcp.Description("Project title (case-insensitive) or path relative to the index"),
				mcp.Required(),
			),
		),
		s.handleOpenProject,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_sections",
			mcp.WithDescription("Filter sections of the active project by a case-insensitive substring of their title or text. Results show the path of ancestor titles. An empty query clears the search."),
			mcp.WithString("query",
				mcp.Description("Text to look for; empty restores the full tree"),
			),
		),
		s.handleSearchSections,
	)

	mcpServer.AddTool(
		mcp.NewTool("navigate",
			mcp.WithDescription("Move through the active project: select a section by id, go to the next or previous section in reading order, or open/close a tree entry."),
			mcp.WithString("action",
				mcp.Description("One of select, next, previous, toggle"),
				mcp.Enum("select", "next", "previous", "toggle"),
				mcp.Required(),
			),
			mcp.WithString("id",
				mcp.Description("Section id, required for select and toggle"),
			),
		),
		s.handleNavigate,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			present.SectionURIPrefix+"{id}",
			"Documentation section",
			mcp.WithTemplateDescription("Read one section of the active project without changing the selection. Section lists and links return these URIs."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

func (s *Server) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.client.Projects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects failed: %v", err)), nil
	}
	if len(resp.Projects) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No projects in %s.", resp.Index)), nil
	}

	var b strings.Builder
	for _, p := range resp.Projects {
		fmt.Fprintf(&b, "- **%s** (%s)", p.Title, p.Path)
		if p.Description != "" {
			fmt.Fprintf(&b, ": %s", p.Description)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleOpenProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, _ := req.GetArguments()["project"].(string)
	if project == "" {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}

	resp, err := s.client.Open(ctx, project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("opening %s failed: %v", project, err)), nil
	}
	return mcp.NewToolResultText(formatView(resp)), nil
}

func (s *Server) handleSearchSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := req.GetArguments()["query"].(string)

	resp, err := s.client.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatView(resp)), nil
}

func (s *Server) handleNavigate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	action, _ := args["action"].(string)
	id, _ := args["id"].(string)

	var resp *rpc.ViewResponse
	var err error
	switch action {
	case "select", "toggle":
		if id == "" {
			return mcp.NewToolResultError(fmt.Sprintf("%s requires an id", action)), nil
		}
		if action == "select" {
			resp, err = s.client.Select(ctx, docs.ID(id))
		} else {
			resp, err = s.client.Toggle(ctx, docs.ID(id))
		}
	case "next":
		resp, err = s.client.Next(ctx)
	case "previous":
		resp, err = s.client.Previous(ctx)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err)), nil
	}

	text := formatView(resp)
	if (action == "next" || action == "previous") && !resp.Moved {
		text = fmt.Sprintf("No %s section; selection unchanged.\n\n", action) + text
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := strings.TrimPrefix(uri, present.SectionURIPrefix)
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	resp, err := s.client.Section(ctx, docs.ID(id))
	if err != nil {
		return nil, fmt.Errorf("getting section: %w", err)
	}

	opts := present.ForProject(resp.Project)
	opts.FrontMatter = true
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     present.Markdown(resp.Page, opts),
		},
	}, nil
}

// formatView writes the section list followed by the current page.
func formatView(resp *rpc.ViewResponse) string {
	v := resp.View
	var b strings.Builder
	if v.Project != "" {
		fmt.Fprintf(&b, "Project: %s\n", v.Project)
	}
	if v.Query != "" {
		fmt.Fprintf(&b, "Search: %q (%d results)\n", v.Query, len(v.Sidebar))
	}
	if len(v.Sidebar) > 0 {
		b.WriteString("\n## Sections\n\n")
		b.WriteString(present.SidebarMarkdown(v.Sidebar))
	}
	b.WriteString("\n")
	b.WriteString(present.Markdown(v.Page, present.ForProject(v.Project)))
	return b.String()
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}
