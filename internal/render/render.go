package render

import (
	"strings"

	"github.com/jcdickinson/docdeck/internal/docs"
)

// Kind identifies what a presentation layer should draw for an instruction.
type Kind string

const (
	KindHeader    Kind = "header"
	KindText      Kind = "text"
	KindNote      Kind = "note"
	KindTip       Kind = "tip"
	KindCode      Kind = "code"
	KindImage     Kind = "image"
	KindRoadmap   Kind = "roadmap"
	KindQuickLink Kind = "quick_link"
	KindPrevious  Kind = "previous"
	KindNext      Kind = "next"
	KindNotice    Kind = "notice"
)

// Instruction carries everything needed to draw one element of a page.
// Markup is rich text that may contain inline markup; Text is literal.
type Instruction struct {
	Kind       Kind        `json:"kind"`
	Markup     string      `json:"markup,omitempty"`
	Text       string      `json:"text,omitempty"`
	Src        string      `json:"src,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Caption    string      `json:"caption,omitempty"`
	Align      string      `json:"align,omitempty"`
	Milestones []Milestone `json:"milestones,omitempty"`
	Target     docs.ID     `json:"target,omitempty"`
	Title      string      `json:"title,omitempty"`
}

type Milestone struct {
	Version  string   `json:"version"`
	Date     string   `json:"date"`
	Status   string   `json:"status"`
	Variant  string   `json:"variant"`
	Features []string `json:"features"`
}

// Page is a rendered section.
type Page struct {
	ID           docs.ID       `json:"id"`
	Title        string        `json:"title"`
	Instructions []Instruction `json:"instructions"`
}

// Neighbors supplies the reading-order neighbors of a section.
type Neighbors interface {
	Previous(id docs.ID) (*docs.Section, bool)
	Next(id docs.ID) (*docs.Section, bool)
}

// Context describes where a section is being rendered from. Nav is nil when
// the section is a search result, which suppresses previous/next links.
type Context struct {
	Nav Neighbors
}

// DefaultImageAlt is used when an image block has no caption.
const DefaultImageAlt = "Doc Image"

// Render turns a section into a page: one instruction per recognized block,
// a quick link per subsection, then previous/next links when ctx has a Nav.
func Render(s *docs.Section, ctx Context) Page {
	p := Page{ID: s.ID, Title: s.Title}

	d := &dispatcher{}
	for _, b := range s.Content {
		if b == nil {
			continue
		}
		b.Accept(d)
	}
	p.Instructions = d.out

	for _, sub := range s.Subsections {
		if sub == nil {
			continue
		}
		p.Instructions = append(p.Instructions, Instruction{
			Kind:   KindQuickLink,
			Title:  sub.Title,
			Target: sub.ID,
		})
	}

	if ctx.Nav != nil {
		if prev, ok := ctx.Nav.Previous(s.ID); ok {
			p.Instructions = append(p.Instructions, Instruction{Kind: KindPrevious, Title: prev.Title, Target: prev.ID})
		}
		if next, ok := ctx.Nav.Next(s.ID); ok {
			p.Instructions = append(p.Instructions, Instruction{Kind: KindNext, Title: next.Title, Target: next.ID})
		}
	}
	return p
}

// Notice builds a page that only shows a message, for loading, error and
// empty states.
func Notice(title, msg string) Page {
	return Page{
		Title:        title,
		Instructions: []Instruction{{Kind: KindNotice, Text: msg}},
	}
}

// StatusVariant maps a milestone status to its display variant,
// e.g. "In Progress" becomes "status-in-progress".
func StatusVariant(status string) string {
	return "status-" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(status)), " ", "-")
}

type dispatcher struct {
	out []Instruction
}

func (d *dispatcher) emit(in Instruction) {
	d.out = append(d.out, in)
}

func (d *dispatcher) VisitHeader(b *docs.HeaderBlock) {
	d.emit(Instruction{Kind: KindHeader, Markup: b.Value.Join("")})
}

func (d *dispatcher) VisitText(b *docs.TextBlock) {
	d.emit(Instruction{Kind: KindText, Markup: b.Value.Join("")})
}

func (d *dispatcher) VisitNote(b *docs.NoteBlock) {
	d.emit(Instruction{Kind: KindNote, Markup: b.Value.Join("")})
}

func (d *dispatcher) VisitTip(b *docs.TipBlock) {
	d.emit(Instruction{Kind: KindTip, Markup: b.Value.Join("")})
}

func (d *dispatcher) VisitCode(b *docs.CodeBlock) {
	d.emit(Instruction{Kind: KindCode, Text: b.Value.Join("\n")})
}

func (d *dispatcher) VisitImage(b *docs.ImageBlock) {
	alt := b.Caption
	if alt == "" {
		alt = DefaultImageAlt
	}
	d.emit(Instruction{Kind: KindImage, Src: b.Src, Alt: alt, Caption: b.Caption, Align: b.Align})
}

func (d *dispatcher) VisitRoadmap(b *docs.RoadmapBlock) {
	ms := make([]Milestone, len(b.Milestones))
	for i, m := range b.Milestones {
		ms[i] = Milestone{
			Version:  m.Version,
			Date:     m.Date,
			Status:   m.Status,
			Variant:  StatusVariant(m.Status),
			Features: m.Features,
		}
	}
	d.emit(Instruction{Kind: KindRoadmap, Milestones: ms})
}

// VisitUnknown emits nothing; unknown tags are skipped.
func (d *dispatcher) VisitUnknown(*docs.UnknownBlock) {}
