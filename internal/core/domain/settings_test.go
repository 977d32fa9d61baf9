package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnowledgeDomain_Block(t *testing.T) {
	d := KnowledgeDomain{ID: "hr", Name: "HR Portal"}
	assert.Equal(t, "[Knowledge Domain]\nid: hr\nname: HR Portal\n", d.Block())

	d.Description = "Policies and forms"
	d.LabelFilter = "hr"
	block := d.Block()
	assert.Contains(t, block, "description: Policies and forms\n")
	assert.Contains(t, block, "fessLabel: hr\n")
}

func TestLabelScope(t *testing.T) {
	assert.Equal(t, "", LabelScope(LabelAll))
	assert.Equal(t, "hr", LabelScope("hr"))
	assert.Equal(t, "", Settings{DefaultLabel: "all"}.DefaultScope())
	assert.Equal(t, "finance", Settings{DefaultLabel: "finance"}.DefaultScope())
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, 100, l.MaxPageSize)
	assert.Equal(t, 262144, l.MaxChunkBytes)
	assert.LessOrEqual(t, l.SnippetMinChars, l.SnippetDefaultChars)
	assert.LessOrEqual(t, l.SnippetDefaultChars, l.SnippetMaxChars)
	assert.LessOrEqual(t, l.SnippetDefaultFragments, l.SnippetMaxFragments)
	assert.LessOrEqual(t, l.SnippetDefaultDocs, l.SnippetMaxDocs)
}
