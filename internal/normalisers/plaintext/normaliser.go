package plaintext

import (
	"bytes"
	"context"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
// "text/*" claims every text type no more specific normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/*",
		"text/plain",
		"text/markdown",
		"text/csv",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the body as text, decoded from the charset named in
// the content type. Invalid UTF-8 sequences are replaced.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	r, err := charset.NewReader(bytes.NewReader(raw.Content), raw.MIMEType)
	if err != nil {
		// Unknown charset: fall back to the raw bytes.
		r = bytes.NewReader(raw.Content)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	text := strings.ToValidUTF8(string(content), "�")
	return strings.TrimPrefix(text, "\ufeff"), nil
}
