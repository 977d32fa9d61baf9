package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/services"
)

var (
	searchLabel    string
	searchPageSize int
	searchStart    int
	searchSnippets bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index",
	Long: `Runs a query against the configured Fess index, scoped to the default
label unless --label is given. Use --label all to search the whole index.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLabel, "label", "l", "", "label scope (default: configured default label)")
	searchCmd.Flags().IntVarP(&searchPageSize, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().IntVar(&searchStart, "start", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchSnippets, "snippets", false, "attach generated snippets")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the raw response as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	req := domain.SearchRequest{
		Query:    args[0],
		PageSize: &searchPageSize,
		Start:    &searchStart,
		Snippets: domain.SnippetRequest{Enabled: searchSnippets, TagPre: "*", TagPost: "*"},
	}
	if searchLabel != "" {
		req.Label = &searchLabel
	}

	resp, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		if resp.Raw != nil {
			return printJSON(cmd, resp.Raw, false)
		}
		return printJSON(cmd, resp.Hits, false)
	}
	return outputSearchTable(cmd, resp)
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("Results (%d total):", resp.RecordCount)))
	cmd.Println()
	for i, hit := range resp.Hits {
		title := stringOf(hit, "title")
		docID := stringOf(hit, "doc_id")
		if title == "" {
			title = docID
		}

		// Format: [N] Title (doc_id)
		cmd.Printf("  [%d] %s %s\n", i+1, valueStyle.Render(title), mutedStyle.Render("("+docID+")"))
		if u := stringOf(hit, "url"); u != "" {
			cmd.Printf("      %s\n", mutedStyle.Render(u))
		}
		if info, ok := hit[services.SnippetsKey].(map[string]any); ok {
			if snippets, ok := info["snippets"].([]string); ok {
				for _, s := range snippets {
					cmd.Printf("      %s\n", s)
				}
			}
		}
		cmd.Println()
	}
	return nil
}

func stringOf(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
