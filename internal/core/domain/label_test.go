package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelCatalogSnapshot_ListAndLookup(t *testing.T) {
	snap := &LabelCatalogSnapshot{
		Entries: map[string]LabelEntry{
			"all": {LabelDefinition: DefaultAllLabel, Availability: AvailabilityBoth},
			"hr":  {LabelDefinition: LabelDefinition{Value: "hr"}, Availability: AvailabilityConfigOnly},
			"ops": {LabelDefinition: LabelDefinition{Value: "ops"}, Availability: AvailabilityRemoteOnly},
		},
		Order: []string{"all", "hr", "ops"},
	}

	list := snap.List()
	assert.Len(t, list, 3)
	assert.Equal(t, "hr", list[1].Value)

	hr, ok := snap.Lookup("hr")
	assert.True(t, ok)
	assert.True(t, hr.Configured())
	assert.False(t, hr.PresentInIndex())

	ops, _ := snap.Lookup("ops")
	assert.False(t, ops.Configured())
	assert.True(t, ops.PresentInIndex())

	_, ok = snap.Lookup("missing")
	assert.False(t, ok)
}

func TestLabelCatalogSnapshot_Nil(t *testing.T) {
	var snap *LabelCatalogSnapshot
	assert.Nil(t, snap.List())
	_, ok := snap.Lookup("all")
	assert.False(t, ok)
}
