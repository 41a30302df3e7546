package present

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/fetch"
	md "github.com/jcdickinson/docdeck/internal/markdown"
	"github.com/jcdickinson/docdeck/internal/render"
	"github.com/jcdickinson/docdeck/internal/session"
)

// SectionURIPrefix addresses a section of the active project. Quick links and
// previous/next links point here.
const SectionURIPrefix = "docdeck://section/"

// SectionURI returns the link target for a section.
func SectionURI(id docs.ID) string {
	return SectionURIPrefix + string(id)
}

// ImageResolver maps an image source from a project document to something
// the output can load. It is only consulted for images that are drawn.
type ImageResolver interface {
	ResolveImage(src string) string
}

// ImageResolverFunc adapts a function to ImageResolver.
type ImageResolverFunc func(src string) string

func (f ImageResolverFunc) ResolveImage(src string) string {
	return f(src)
}

// Options controls how a page is written out.
type Options struct {
	// Base is the project document location; relative links inside rich
	// text are resolved against it.
	Base string
	// Images resolves image sources. Nil leaves sources as written.
	Images ImageResolver
	// FrontMatter prepends id/title metadata to Markdown output.
	FrontMatter bool
}

// Markdown writes a page as Markdown. Rich text is passed through unchanged,
// so inline HTML in the document survives.
func Markdown(p render.Page, opts Options) string {
	out := writePage(p, opts, false)
	if !opts.FrontMatter || p.ID == "" {
		return out
	}
	return md.AddFrontMatter(out, map[string]string{
		"id":    string(p.ID),
		"title": p.Title,
	})
}

// writePage builds the Markdown body. With rawHTML set, images and roadmaps
// are emitted as HTML blocks so the HTML renderer can mark them up fully.
func writePage(p render.Page, opts Options, rawHTML bool) string {
	var b strings.Builder
	if p.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", p.Title)
	}

	var links []render.Instruction
	var nav []render.Instruction
	for _, in := range p.Instructions {
		switch in.Kind {
		case render.KindHeader:
			fmt.Fprintf(&b, "## %s\n\n", resolveLinks(in.Markup, opts.Base))
		case render.KindText:
			fmt.Fprintf(&b, "%s\n\n", resolveLinks(in.Markup, opts.Base))
		case render.KindNote:
			b.WriteString(quote("**Note:** " + resolveLinks(in.Markup, opts.Base)))
		case render.KindTip:
			b.WriteString(quote("**Tip:** " + resolveLinks(in.Markup, opts.Base)))
		case render.KindCode:
			if rawHTML {
				fmt.Fprintf(&b, "<pre><code>%s</code></pre>\n\n", html.EscapeString(in.Text))
			} else {
				f := fence(in.Text)
				fmt.Fprintf(&b, "%s\n%s\n%s\n\n", f, in.Text, f)
			}
		case render.KindImage:
			src := in.Src
			if opts.Images != nil {
				src = opts.Images.ResolveImage(src)
			}
			if rawHTML {
				b.WriteString(imageHTML(in, src))
			} else {
				b.WriteString(imageMarkdown(in, src))
			}
		case render.KindRoadmap:
			if rawHTML {
				b.WriteString(roadmapHTML(in.Milestones))
			} else {
				b.WriteString(roadmapMarkdown(in.Milestones))
			}
		case render.KindQuickLink:
			links = append(links, in)
		case render.KindPrevious, render.KindNext:
			nav = append(nav, in)
		case render.KindNotice:
			fmt.Fprintf(&b, "_%s_\n\n", in.Text)
		}
	}

	if len(links) > 0 {
		b.WriteString("**In this section**\n\n")
		for _, in := range links {
			fmt.Fprintf(&b, "- [%s](%s)\n", in.Title, SectionURI(in.Target))
		}
		b.WriteString("\n")
	}

	if len(nav) > 0 {
		b.WriteString("---\n\n")
		for _, in := range nav {
			label := "Next"
			if in.Kind == render.KindPrevious {
				label = "Previous"
			}
			fmt.Fprintf(&b, "%s: [%s](%s)\n\n", label, in.Title, SectionURI(in.Target))
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// resolveLinks rewrites relative link and image destinations in one piece of
// rich text against base. Code is never passed through here.
func resolveLinks(markup, base string) string {
	if base == "" {
		return markup
	}
	return md.RewriteLinks(markup, func(dest string) (string, bool) {
		if !isRelative(dest) {
			return "", false
		}
		return fetch.Resolve(base, dest), true
	})
}

// fence returns a backtick fence longer than any backtick run in code.
func fence(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

func isRelative(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return false
	}
	u, err := url.Parse(dest)
	return err == nil && u.Scheme == "" && u.Host == ""
}

func quote(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func imageMarkdown(in render.Instruction, src string) string {
	s := fmt.Sprintf("![%s](%s)\n\n", in.Alt, src)
	if in.Caption != "" {
		s += fmt.Sprintf("*%s*\n\n", in.Caption)
	}
	return s
}

func roadmapMarkdown(ms []render.Milestone) string {
	var b strings.Builder
	for _, m := range ms {
		fmt.Fprintf(&b, "### %s\n\n", m.Version)
		if m.Date != "" || m.Status != "" {
			fmt.Fprintf(&b, "%s · **%s**\n\n", m.Date, m.Status)
		}
		for _, f := range m.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		if len(m.Features) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// imageHTML defers loading to the browser: the real source sits in data-src.
func imageHTML(in render.Instruction, src string) string {
	class := "doc-image"
	if in.Align != "" {
		class += " align-" + html.EscapeString(in.Align)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<div class=\"%s\">\n", class)
	fmt.Fprintf(&b, "<img loading=\"lazy\" data-src=\"%s\" alt=\"%s\">\n",
		html.EscapeString(src), html.EscapeString(in.Alt))
	if in.Caption != "" {
		fmt.Fprintf(&b, "<p class=\"caption\">%s</p>\n", html.EscapeString(in.Caption))
	}
	b.WriteString("</div>\n\n")
	return b.String()
}

func roadmapHTML(ms []render.Milestone) string {
	var b strings.Builder
	b.WriteString("<div class=\"roadmap\">\n")
	for _, m := range ms {
		fmt.Fprintf(&b, "<div class=\"milestone %s\">\n", html.EscapeString(m.Variant))
		fmt.Fprintf(&b, "<h3>%s</h3>\n", html.EscapeString(m.Version))
		fmt.Fprintf(&b, "<span class=\"date\">%s</span> <span class=\"status\">%s</span>\n",
			html.EscapeString(m.Date), html.EscapeString(m.Status))
		if len(m.Features) > 0 {
			b.WriteString("<ul>\n")
			for _, f := range m.Features {
				fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(f))
			}
			b.WriteString("</ul>\n")
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n\n")
	return b.String()
}

// ForProject returns options that resolve links and images against the
// project document at path.
func ForProject(path string) Options {
	if path == "" {
		return Options{}
	}
	return Options{
		Base: path,
		Images: ImageResolverFunc(func(src string) string {
			return fetch.Resolve(path, src)
		}),
	}
}

// SidebarMarkdown writes the section list as a nested Markdown list of
// section links. The selected entry is marked in bold.
func SidebarMarkdown(entries []session.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		title := e.Title
		if e.Selected {
			title = "**" + title + "**"
		}
		suffix := ""
		if e.HasChildren && !e.Expanded {
			suffix = " (+)"
		}
		fmt.Fprintf(&b, "%s- [%s](%s)%s\n", strings.Repeat("  ", e.Depth), title, SectionURI(e.ID), suffix)
	}
	return b.String()
}
