package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/html")
	assert.Contains(t, mimeTypes, "application/xhtml+xml")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_EmptyContent(t *testing.T) {
	text, err := New().Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/html"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple paragraph", input: "<p>Hello World</p>", expected: "Hello World"},
		{name: "nested tags", input: "<div><p><strong>Bold</strong> text</p></div>", expected: "Bold text"},
		{
			name:     "script removed",
			input:    "<p>Before</p><script>alert('evil');</script><p>After</p>",
			expected: "Before\nAfter",
		},
		{name: "style removed", input: "<style>.foo { color: red; }</style><p>Content</p>", expected: "Content"},
		{name: "noscript removed", input: "<p>Content</p><noscript>No JS fallback</noscript>", expected: "Content"},
		{
			name:     "head removed",
			input:    "<head><meta charset='utf-8'><title>Title</title></head><body>Content</body>",
			expected: "Content",
		},
		{name: "br to newline", input: "Line 1<br>Line 2<br/>Line 3", expected: "Line 1\nLine 2\nLine 3"},
		{name: "block elements create newlines", input: "<div>Block 1</div><div>Block 2</div>", expected: "Block 1\nBlock 2"},
		{name: "entities decoded", input: "<p>&lt;tag&gt; &amp; &quot;quotes&quot;</p>", expected: "<tag> & \"quotes\""},
		{name: "comments removed", input: "<p>Before</p><!-- comment --><p>After</p>", expected: "Before\nAfter"},
		{name: "list items", input: "<ul><li>Item 1</li><li>Item 2</li></ul>", expected: "Item 1\nItem 2"},
		{name: "whitespace collapsed", input: "<p>a    lot\t\tof   space</p>", expected: "a lot of space"},
		{name: "non-ascii preserved", input: "<p>Grüße, 世界</p>", expected: "Grüße, 世界"},
	}

	n := New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := n.Normalise(context.Background(), &domain.RawDocument{
				MIMEType: "text/html",
				Content:  []byte(tc.input),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, text)
		})
	}
}
