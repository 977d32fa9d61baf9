package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

var (
	labelsRefresh bool
	labelsJSON    bool
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List label scopes",
	Long: `Lists the merged label catalog: labels from configuration and labels
known to the index, with their availability.`,
	Args: cobra.NoArgs,
	RunE: runLabels,
}

func init() {
	labelsCmd.Flags().BoolVar(&labelsRefresh, "refresh", false, "bypass the label cache")
	labelsCmd.Flags().BoolVar(&labelsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	listing := labelService.Get(cmd.Context(), labelsRefresh)
	if labelsJSON {
		return printJSON(cmd, listing.Snapshot.List(), false)
	}

	if listing.Stale {
		cmd.Println(warningStyle.Render("warning: " + listing.Warning))
		cmd.Println()
	}

	entries := listing.Snapshot.List()
	if len(entries) == 0 {
		cmd.Println("No labels.")
		return nil
	}

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Value))
	}

	cmd.Println(titleStyle.Render("Labels:"))
	cmd.Println()
	for _, e := range entries {
		pad := strings.Repeat(" ", width-len(e.Value))
		cmd.Printf("  %s%s  %s  %s\n",
			valueStyle.Render(e.Value), pad, e.Title, availabilityStyle(e.Availability))
		if e.Description != "" && e.Description != domain.UnconfiguredLabelDescription {
			cmd.Printf("  %s  %s\n", strings.Repeat(" ", width), mutedStyle.Render(e.Description))
		}
	}
	return nil
}

func availabilityStyle(a domain.Availability) string {
	text := fmt.Sprintf("[%s]", a)
	if a == domain.AvailabilityBoth {
		return successStyle.Render(text)
	}
	return mutedStyle.Render(text)
}
