package rpc

import (
	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/render"
	"github.com/jcdickinson/docdeck/internal/viewer"
)

// ProjectsResponse is the response body for GET /projects.
type ProjectsResponse struct {
	Index    string             `json:"index"`
	Projects []docs.ProjectInfo `json:"projects"`
}

// OpenRequest is the request body for POST /open. Project is a title or a
// path relative to the index.
type OpenRequest struct {
	Project string `json:"project"`
}

// SelectRequest is the request body for POST /select and POST /toggle.
type SelectRequest struct {
	ID docs.ID `json:"id"`
}

// SearchRequest is the request body for POST /search. An empty query clears
// the search.
type SearchRequest struct {
	Query string `json:"query"`
}

// ViewResponse is returned by every endpoint that reads or changes the
// session. Moved is set by /next and /previous.
type ViewResponse struct {
	View  viewer.View `json:"view"`
	Moved bool        `json:"moved,omitempty"`
	Error string      `json:"error,omitempty"`
}

// SectionResponse is the response body for GET /section/{id}.
type SectionResponse struct {
	// Project is the document the page was rendered from; relative links in
	// the page resolve against it.
	Project string      `json:"project"`
	Page    render.Page `json:"page"`
}

// StatusResponse is the response body for GET /status.
type StatusResponse struct {
	Index    string `json:"index"`
	Project  string `json:"project,omitempty"`
	Loading  bool   `json:"loading,omitempty"`
	Sections int    `json:"sections"`
	Query    string `json:"query,omitempty"`
	Selected string `json:"selected,omitempty"`
	Uptime   string `json:"uptime"`
}
