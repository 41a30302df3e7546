package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jcdickinson/docdeck/internal/daemon"
	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/present"
	"github.com/jcdickinson/docdeck/internal/rpc"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects in the documentation index",
	Run:   runProjects,
}

var openCmd = &cobra.Command{
	Use:   "open <title|path>",
	Short: "Open a documentation project",
	Example: `  docdeck open "Getting Started"
  docdeck open guides/cli.json
  docdeck open https://docs.example.com/projects/api.json`,
	Args: cobra.ExactArgs(1),
	Run:  runOpen,
}

var tocCmd = &cobra.Command{
	Use:   "toc",
	Short: "Show the section list (tree, or search results while searching)",
	Run:   runToc,
}

var showCmd = &cobra.Command{
	Use:   "show [section-id]",
	Short: "Show the selected section, or select and show the given one",
	Args:  cobra.MaximumNArgs(1),
	Run:   runShow,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Move to the next section in reading order",
	Run:   func(cmd *cobra.Command, args []string) { runStep(true) },
}

var prevCmd = &cobra.Command{
	Use:     "prev",
	Aliases: []string{"previous"},
	Short:   "Move to the previous section in reading order",
	Run:     func(cmd *cobra.Command, args []string) { runStep(false) },
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Filter sections by title or text; no query clears the search",
	Example: `  docdeck search install
  docdeck search "config file"
  docdeck search`,
	Run: runSearch,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <section-id>",
	Short: "Open or close a section in the tree",
	Args:  cobra.ExactArgs(1),
	Run:   runToggle,
}

var showPeek bool

func init() {
	showCmd.Flags().BoolVar(&showPeek, "peek", false, "show the section without selecting it")

	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(tocCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(toggleCmd)
}

func mustConnect() *daemon.Client {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}
	return client
}

func runProjects(cmd *cobra.Command, args []string) {
	resp, err := mustConnect().Projects(context.Background())
	if err != nil {
		log.Fatalf("listing projects failed: %v", err)
	}
	if outputJSON {
		printJSON(resp)
		return
	}
	if len(resp.Projects) == 0 {
		fmt.Printf("no projects in %s\n", resp.Index)
		return
	}
	fmt.Print(present.Projects(resp.Projects))
}

func runOpen(cmd *cobra.Command, args []string) {
	resp, err := mustConnect().Open(context.Background(), args[0])
	if err != nil {
		if resp != nil {
			printView(resp)
		}
		log.Fatalf("open failed: %v", err)
	}
	printView(resp)
}

func runToc(cmd *cobra.Command, args []string) {
	resp, err := mustConnect().View(context.Background())
	if err != nil {
		log.Fatalf("reading view failed: %v", err)
	}
	if outputJSON {
		printJSON(resp.View.Sidebar)
		return
	}
	if resp.View.Project == "" {
		fmt.Println("no project loaded")
		return
	}
	printSidebar(resp.View)
}

func runShow(cmd *cobra.Command, args []string) {
	client := mustConnect()
	ctx := context.Background()

	if len(args) == 0 {
		resp, err := client.View(ctx)
		if err != nil {
			log.Fatalf("reading view failed: %v", err)
		}
		printView(resp)
		return
	}

	id := docs.ID(args[0])
	if showPeek {
		resp, err := client.Section(ctx, id)
		if err != nil {
			log.Fatalf("show failed: %v", err)
		}
		if outputJSON {
			printJSON(resp)
			return
		}
		printPage(resp.Page, resp.Project)
		return
	}

	resp, err := client.Select(ctx, id)
	if err != nil {
		log.Fatalf("select failed: %v", err)
	}
	printView(resp)
}

func runStep(forward bool) {
	client := mustConnect()
	var resp *rpc.ViewResponse
	var err error
	if forward {
		resp, err = client.Next(context.Background())
	} else {
		resp, err = client.Previous(context.Background())
	}
	if err != nil {
		log.Fatalf("navigation failed: %v", err)
	}
	if !resp.Moved && !outputJSON {
		fmt.Println("(selection unchanged)")
	}
	printView(resp)
}

func runSearch(cmd *cobra.Command, args []string) {
	resp, err := mustConnect().Search(context.Background(), strings.Join(args, " "))
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}
	if outputJSON {
		printJSON(resp)
		return
	}
	if resp.View.Query != "" && len(resp.View.Sidebar) == 0 {
		fmt.Println("no results")
		return
	}
	printSidebar(resp.View)
}

func runToggle(cmd *cobra.Command, args []string) {
	resp, err := mustConnect().Toggle(context.Background(), docs.ID(args[0]))
	if err != nil {
		log.Fatalf("toggle failed: %v", err)
	}
	if outputJSON {
		printJSON(resp)
		return
	}
	printSidebar(resp.View)
}
