package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/jcdickinson/docdeck/internal/config"
	"github.com/jcdickinson/docdeck/internal/daemon"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active project and daemon state",
	Run:   runStatus,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	Run:   runStop,
}

func runStatus(cmd *cobra.Command, args []string) {
	client := daemon.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon is not running")
		return
	}

	resp, err := client.Status(context.Background())
	if err != nil {
		log.Fatalf("status failed: %v", err)
	}

	if outputJSON {
		printJSON(resp)
		return
	}

	fmt.Printf("  index:    %s\n", resp.Index)
	fmt.Printf("  uptime:   %s\n", resp.Uptime)
	if resp.Project == "" {
		fmt.Println("  project:  (none)")
		return
	}
	state := "ready"
	if resp.Loading {
		state = "loading"
	}
	fmt.Printf("  project:  %s [%s, %d sections]\n", resp.Project, state, resp.Sections)
	if resp.Selected != "" {
		fmt.Printf("  selected: %s\n", resp.Selected)
	}
	if resp.Query != "" {
		fmt.Printf("  search:   %q\n", resp.Query)
	}
}

func runStop(cmd *cobra.Command, args []string) {
	client := daemon.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon is not running")
		return
	}

	// The daemon exits right after replying, so a reset connection is fine.
	client.Shutdown(context.Background())
	fmt.Println("daemon stopped")
}
