package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arborlint/arbor/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP (Model Context Protocol) server for LLM tool integration",
	Long: `Starts an MCP server over stdio transport that exposes arbor's analyzers
as tools that LLMs can invoke.

To use with an MCP client, add to your config:
  {
    "mcpServers": {
      "arbor": {
        "command": "arbor",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_deadcode    Unreachable files, unused symbols and variables
  - analyze_duplicates  Near-duplicate functions and methods
  - analyze_project     Both analyzers in a single parse pass
  - analyze_graph       Module dependency graph with centrality metrics`,
	RunE: runMCP,
}

var mcpManifest bool

func init() {
	mcpCmd.Flags().BoolVar(&mcpManifest, "manifest", false, "Print the server.json manifest and exit")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if mcpManifest {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	server := mcpserver.NewServer(version)
	return server.Run(cmd.Context())
}
