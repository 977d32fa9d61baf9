package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

var (
	chunkOffset int
	chunkLength int
	wholeJSON   bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [docId]",
	Short: "Fetch a window of document text",
	Long: `Fetches a character window of a document's text as JSON. Continue with
--offset set to offset+length while hasMore is true.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

var wholeCmd = &cobra.Command{
	Use:   "whole [docId]",
	Short: "Fetch document text up to the maximum chunk size",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhole,
}

func init() {
	chunkCmd.Flags().IntVar(&chunkOffset, "offset", 0, "character offset")
	chunkCmd.Flags().IntVar(&chunkLength, "length", 0, "characters to return (0 = maximum chunk size)")
	wholeCmd.Flags().BoolVar(&wholeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(wholeCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	req := domain.ChunkRequest{DocID: args[0], Offset: &chunkOffset}
	if cmd.Flags().Changed("length") {
		req.Length = &chunkLength
	}

	window, err := contentService.FetchChunk(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("fetch chunk failed: %w", err)
	}
	return printJSON(cmd, window, false)
}

func runWhole(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	whole, err := contentService.FetchWhole(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetch document failed: %w", err)
	}
	if wholeJSON {
		return printJSON(cmd, whole, false)
	}

	fmt.Fprintln(cmd.OutOrStdout(), whole.Content)
	if whole.Truncated {
		cmd.PrintErrln(warningStyle.Render(whole.Message))
	}
	return nil
}
