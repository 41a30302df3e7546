package present

import (
	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/jcdickinson/docdeck/internal/render"
)

// HTML renders a page to an HTML fragment. Images carry loading="lazy" and
// keep their source in data-src until a client decides to load them.
func HTML(p render.Page, opts Options) string {
	src := writePage(p, opts, true)

	// Parsers carry state and cannot be reused across documents.
	ps := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(gm.ToHTML([]byte(src), ps, renderer))
}
