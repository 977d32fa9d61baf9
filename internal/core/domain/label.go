package domain

import "time"

// LabelAll is the reserved label meaning "no scope filter".
const LabelAll = "all"

// LabelDefinition is static metadata describing a named search scope.
type LabelDefinition struct {
	Value       string   `json:"value"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

// DefaultAllLabel is used when configuration does not describe "all".
var DefaultAllLabel = LabelDefinition{
	Value:       LabelAll,
	Title:       "All documents",
	Description: "Search across the whole index without label filtering.",
	Examples:    []string{"company policy", "project documentation"},
}

// UnconfiguredLabelDescription is the placeholder description for remote-only labels.
const UnconfiguredLabelDescription = "No description configured."

// Availability records where a label is known.
type Availability string

// Label availabilities.
const (
	AvailabilityBoth       Availability = "config-and-remote"
	AvailabilityConfigOnly Availability = "config-only"
	AvailabilityRemoteOnly Availability = "remote-only"
)

// RemoteLabel is a value/name pair from the index's label endpoint.
type RemoteLabel struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

// LabelEntry is one label in a catalog snapshot.
type LabelEntry struct {
	LabelDefinition

	// Name is the display name reported by the index, if any.
	Name string `json:"name"`

	// Availability records whether the label is configured, remote, or both.
	Availability Availability `json:"availability"`
}

// Configured reports whether the label came from configuration.
func (e LabelEntry) Configured() bool {
	return e.Availability != AvailabilityRemoteOnly
}

// PresentInIndex reports whether the index knows the label.
func (e LabelEntry) PresentInIndex() bool {
	return e.Availability != AvailabilityConfigOnly
}

// LabelCatalogSnapshot is an immutable merged view of the label catalog.
// It is replaced wholesale on refresh and must not be mutated after publication.
type LabelCatalogSnapshot struct {
	// Entries maps label value to entry.
	Entries map[string]LabelEntry

	// Order lists values: configured labels first (sorted, "all" leading),
	// then remote-only labels sorted.
	Order []string

	// FetchedAt is the time of the last successful remote refresh.
	// Zero when the remote catalog has never been reached.
	FetchedAt time.Time
}

// Lookup returns the entry for value.
func (s *LabelCatalogSnapshot) Lookup(value string) (LabelEntry, bool) {
	if s == nil {
		return LabelEntry{}, false
	}
	e, ok := s.Entries[value]
	return e, ok
}

// List returns the entries in display order.
func (s *LabelCatalogSnapshot) List() []LabelEntry {
	if s == nil {
		return nil
	}
	out := make([]LabelEntry, 0, len(s.Order))
	for _, v := range s.Order {
		out = append(out, s.Entries[v])
	}
	return out
}

// LabelListing is what the label catalog serves: a snapshot plus a soft
// warning when the latest refresh failed.
type LabelListing struct {
	Snapshot *LabelCatalogSnapshot

	// Stale is set when a refresh was attempted and failed.
	Stale bool

	// Warning describes the refresh failure.
	Warning string
}
