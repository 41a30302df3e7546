package cmd

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

//go:embed mcp_prelude.md
var mcpPrelude string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as MCP server (publishes CLI instructions only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := binaryName()
		instructions := fmt.Sprintf(mcpPrelude, name) + agentHelp(name)

		s := server.NewMCPServer("docdeck-cli", "0.1.0",
			server.WithInstructions(instructions),
		)
		return server.ServeStdio(s)
	},
}

// agentHelp lists the user-facing commands with their usage lines. Commands
// that only make sense for machines are left out.
func agentHelp(name string) string {
	var b strings.Builder
	for _, c := range rootCmd.Commands() {
		switch c.Name() {
		case "daemon", "mcp", "help", "completion":
			continue
		}
		if !c.IsAvailableCommand() {
			continue
		}
		fmt.Fprintf(&b, "- `%s %s`: %s\n", name, c.Use, c.Short)
	}
	return b.String()
}

// binaryName returns "docdeck" if it's in PATH and points to the current
// binary, otherwise returns the full path to the binary.
func binaryName() string {
	exe, err := os.Executable()
	if err != nil {
		return "docdeck"
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "docdeck"
	}

	onPath, err := exec.LookPath("docdeck")
	if err == nil {
		resolved, err := filepath.EvalSymlinks(onPath)
		if err == nil && resolved == exe {
			return "docdeck"
		}
	}

	return exe
}
