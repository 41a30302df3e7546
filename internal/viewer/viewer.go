package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/fetch"
	"github.com/jcdickinson/docdeck/internal/render"
	"github.com/jcdickinson/docdeck/internal/session"
)

// View is a snapshot of everything a presentation layer draws.
type View struct {
	Project  string          `json:"project,omitempty"`
	Query    string          `json:"query,omitempty"`
	Loading  bool            `json:"loading,omitempty"`
	Error    string          `json:"error,omitempty"`
	Selected docs.ID         `json:"selected,omitempty"`
	Sidebar  []session.Entry `json:"sidebar"`
	Page     render.Page     `json:"page"`
}

// Viewer serializes access to a single Session and runs project loads. Fetches
// happen outside the lock; results are applied only if no newer load was
// started in the meantime.
type Viewer struct {
	fetcher fetch.Fetcher
	index   string

	mu       sync.Mutex
	sess     *session.Session
	projects []docs.ProjectInfo
}

func New(fetcher fetch.Fetcher, indexURI string) *Viewer {
	return &Viewer{fetcher: fetcher, index: indexURI, sess: session.New()}
}

// IndexURI returns the location of the project index.
func (v *Viewer) IndexURI() string {
	return v.index
}

// Projects fetches the project index. Project paths are resolved against the
// index location.
func (v *Viewer) Projects(ctx context.Context) ([]docs.ProjectInfo, error) {
	data, err := v.fetcher.Fetch(ctx, v.index)
	if err != nil {
		return nil, err
	}
	projects, err := docs.ParseIndex(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", fetch.ErrFetch, v.index, err)
	}
	for i := range projects {
		projects[i].Path = fetch.Resolve(v.index, projects[i].Path)
		if projects[i].Image != "" {
			projects[i].Image = fetch.Resolve(v.index, projects[i].Image)
		}
	}

	v.mu.Lock()
	v.projects = projects
	v.mu.Unlock()
	return projects, nil
}

// ResolveProject maps a title or path to the project document URI. Keys that
// do not name an indexed project are resolved as paths relative to the index.
func (v *Viewer) ResolveProject(ctx context.Context, key string) (string, error) {
	v.mu.Lock()
	projects := v.projects
	v.mu.Unlock()

	if projects == nil {
		var err error
		if projects, err = v.Projects(ctx); err != nil {
			slog.Warn("project index unavailable, treating key as a path", "key", key, "error", err)
		}
	}
	if p, ok := docs.FindProject(projects, key); ok {
		return p.Path, nil
	}
	if p, ok := docs.FindProject(projects, fetch.Resolve(v.index, key)); ok {
		return p.Path, nil
	}
	return fetch.Resolve(v.index, key), nil
}

// Open loads the project document at uri and makes it the active project.
// If another Open starts before this one finishes, this result is dropped.
func (v *Viewer) Open(ctx context.Context, uri string) (View, error) {
	v.mu.Lock()
	gen := v.sess.BeginLoad(uri)
	v.mu.Unlock()

	slog.Info("loading project", "uri", uri, "generation", gen)
	tree, err := v.load(ctx, uri)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		slog.Error("project load failed", "uri", uri, "error", err)
		v.sess.Fail(gen, uri, err)
		return v.view(), err
	}
	if v.sess.Apply(gen, uri, tree) {
		slog.Info("project loaded", "uri", uri, "sections", tree.Len())
	}
	return v.view(), nil
}

func (v *Viewer) load(ctx context.Context, uri string) (*docs.Tree, error) {
	data, err := v.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	tree, err := docs.ParseProject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", fetch.ErrFetch, uri, err)
	}
	return tree, nil
}

// Select selects a section and returns the resulting view.
func (v *Viewer) Select(id docs.ID) (View, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := v.sess.Select(id); err != nil {
		return v.view(), err
	}
	return v.view(), nil
}

// Next advances the selection; moved is false when nothing changed.
func (v *Viewer) Next() (view View, moved bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, moved = v.sess.Next()
	return v.view(), moved
}

// Previous moves the selection back; moved is false when nothing changed.
func (v *Viewer) Previous() (view View, moved bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, moved = v.sess.Previous()
	return v.view(), moved
}

// Search filters the section list. A blank query restores the tree.
func (v *Viewer) Search(query string) View {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sess.Search(query)
	return v.view()
}

// Toggle opens or closes a tree entry.
func (v *Viewer) Toggle(id docs.ID) (View, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.sess.Toggle(id); err != nil {
		return v.view(), err
	}
	return v.view(), nil
}

// Current returns the view without changing anything.
func (v *Viewer) Current() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view()
}

// Section renders any section of the active project without selecting it,
// and reports which project it came from. The page includes previous/next
// links.
func (v *Viewer) Section(id docs.ID) (render.Page, string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	tree := v.sess.Tree()
	if tree == nil {
		return render.Page{}, "", session.ErrNoProject
	}
	sec, ok := tree.Section(id)
	if !ok {
		return render.Page{}, "", fmt.Errorf("%w: %s", session.ErrUnknownSection, id)
	}
	return render.Render(sec, render.Context{Nav: tree}), v.sess.Path(), nil
}

func (v *Viewer) view() View {
	view := View{
		Project: v.sess.Path(),
		Query:   v.sess.Query(),
		Sidebar: v.sess.Sidebar(),
		Page:    v.sess.Page(),
	}
	_, view.Loading = v.sess.Loading()
	if err := v.sess.Err(); err != nil {
		view.Error = err.Error()
	}
	view.Selected, _ = v.sess.Selected()
	return view
}

// Sections returns the number of sections in the active project.
func (v *Viewer) Sections() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if tree := v.sess.Tree(); tree != nil {
		return tree.Len()
	}
	return 0
}
