package cli

import (
	"github.com/spf13/cobra"

	"semtiles/internal/mcp"
)

var mcpPersist bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve compute_distances, summarize_document and ask_document over MCP stdio",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpPersist, "persist-cache", false, "keep document embeddings in .semtiles/cache.db")
}

func runMCP(cmd *cobra.Command, args []string) error {
	logger := GetLogger()

	processor, closeCache, err := newProcessor(GetConfig(), logger, mcpPersist)
	if err != nil {
		return err
	}
	defer closeCache()

	return mcp.NewServer(processor, logger).Serve(cmd.Context())
}
