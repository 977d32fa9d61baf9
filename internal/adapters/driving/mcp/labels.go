package mcp

import (
	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// LabelOutput is one label in the list_labels result.
type LabelOutput struct {
	Value           string              `json:"value"`
	Name            string              `json:"name"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Examples        []string            `json:"examples"`
	IsConfigured    bool                `json:"isConfigured"`
	IsPresentInFess bool                `json:"isPresentInFess"`
	Availability    domain.Availability `json:"availability"`
}

// LabelsOutput is the list_labels result and the labels resource body.
type LabelsOutput struct {
	Labels        []LabelOutput `json:"labels"`
	DefaultLabel  string        `json:"defaultLabel"`
	StrictLabels  bool          `json:"strictLabels"`
	FessAvailable bool          `json:"fessAvailable"`
	Warning       string        `json:"warning,omitempty"`
}

// NewLabelsOutput renders a catalog listing for agents.
func NewLabelsOutput(listing domain.LabelListing, settings domain.Settings) LabelsOutput {
	out := LabelsOutput{
		Labels:        []LabelOutput{},
		DefaultLabel:  settings.DefaultLabel,
		StrictLabels:  settings.StrictLabels,
		FessAvailable: !listing.Stale,
		Warning:       listing.Warning,
	}
	for _, e := range listing.Snapshot.List() {
		examples := e.Examples
		if examples == nil {
			examples = []string{}
		}
		out.Labels = append(out.Labels, LabelOutput{
			Value:           e.Value,
			Name:            e.Name,
			Title:           e.Title,
			Description:     e.Description,
			Examples:        examples,
			IsConfigured:    e.Configured(),
			IsPresentInFess: e.PresentInIndex(),
			Availability:    e.Availability,
		})
	}
	return out
}
