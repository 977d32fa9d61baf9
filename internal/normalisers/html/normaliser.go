package html

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to readable text.
// Script, style and other non-content elements are dropped; block
// elements become line breaks.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	// The reader honours the charset parameter and <meta charset>.
	r, err := charset.NewReader(bytes.NewReader(raw.Content), raw.MIMEType)
	if err != nil {
		r = bytes.NewReader(raw.Content)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	extractText(doc, &sb, 0)
	return cleanText(sb.String()), nil
}

// multiSpaces matches runs of horizontal whitespace.
var multiSpaces = regexp.MustCompile(`[ \t\r\f\v]+`)

const maxDepth = 512

func extractText(node *html.Node, sb *strings.Builder, depth int) {
	if depth > maxDepth {
		return
	}

	switch node.Type {
	case html.TextNode:
		sb.WriteString(node.Data)
	case html.ElementNode:
		switch node.Data {
		case "script", "style", "noscript", "head", "svg", "template", "iframe":
			return
		case "br", "hr":
			sb.WriteString("\n")
			return
		}
		if isBlock(node.Data) {
			sb.WriteString("\n")
		}
	}

	for c := node.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, sb, depth+1)
	}

	if node.Type == html.ElementNode && isBlock(node.Data) {
		sb.WriteString("\n")
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "blockquote",
		"pre", "table", "section", "article", "header", "footer", "nav", "ul", "ol", "dl", "dt", "dd":
		return true
	}
	return false
}

// cleanText collapses runs of spaces, trims every line and drops empty lines.
func cleanText(s string) string {
	s = multiSpaces.ReplaceAllString(s, " ")
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
