package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jcdickinson/docdeck/internal/config"
	"github.com/jcdickinson/docdeck/internal/present"
	"github.com/jcdickinson/docdeck/internal/render"
	"github.com/jcdickinson/docdeck/internal/rpc"
	"github.com/jcdickinson/docdeck/internal/viewer"
)

var (
	outputFormat string
	outputJSON   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "term", "page output format: term, markdown or html")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output raw JSON")
}

func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

// printPage writes a page in the selected format. Terminal rendering falls
// back to Markdown if the renderer cannot be built.
func printPage(page render.Page, project string) {
	opts := present.ForProject(project)
	switch outputFormat {
	case "markdown", "md":
		fmt.Print(present.Markdown(page, opts))
	case "html":
		fmt.Print(present.HTML(page, opts))
	case "term":
		term, err := newTerminal()
		if err != nil {
			log.Printf("terminal renderer unavailable: %v", err)
			fmt.Print(present.Markdown(page, opts))
			return
		}
		fmt.Print(term.Page(page, opts))
	default:
		log.Fatalf("unknown format %q (want term, markdown or html)", outputFormat)
	}
}

func printSidebar(view viewer.View) {
	if view.Query != "" {
		fmt.Printf("search: %q (%d results)\n\n", view.Query, len(view.Sidebar))
	}
	if outputFormat == "term" {
		fmt.Print(present.Sidebar(view.Sidebar))
		return
	}
	fmt.Print(present.SidebarMarkdown(view.Sidebar))
}

// printView prints the page of a view response, or the whole response as
// JSON with --json.
func printView(resp *rpc.ViewResponse) {
	if outputJSON {
		printJSON(resp)
		return
	}
	printPage(resp.View.Page, resp.View.Project)
}

func newTerminal() (*present.Terminal, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return present.NewTerminal(cfg.Render.WordWrap, cfg.Render.Style)
}
