package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	bodyPart = "word/document.xml"

	// maxPartBytes caps the decompressed body part. The fetch limit only
	// bounds the compressed archive.
	maxPartBytes = 64 << 20
)

// Normaliser extracts the body text of fetched Word documents.
type Normaliser struct {
	maxPart int64
}

// New creates a DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{maxPart: maxPartBytes}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{mimeDOCX}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns the document body, one line per non-empty paragraph.
// Table cells are read in document order. The title is not prepended since
// the index record already carries it and offsets must match the body.
// An archive without a body part yields empty text.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", fmt.Errorf("opening docx archive: %w", domain.ErrInvalidInput)
	}

	part, err := archive.Open(bodyPart)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", bodyPart, domain.ErrInvalidInput)
	}
	defer part.Close()

	limited := &io.LimitedReader{R: part, N: n.maxPart + 1}
	text, err := bodyText(ctx, limited)
	if limited.N <= 0 {
		return "", fmt.Errorf("%s exceeds %d bytes: %w", bodyPart, n.maxPart, domain.ErrInvalidInput)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// bodyText walks the WordprocessingML token stream. Text runs (w:t) are
// collected, w:tab and w:br map to tab and newline, and each closing w:p
// ends a line.
func bodyText(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var out, para strings.Builder
	inText := false

	flush := func() {
		line := strings.TrimSpace(para.String())
		para.Reset()
		if line == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(line)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", bodyPart, domain.ErrInvalidInput)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	flush()
	return out.String(), nil
}
