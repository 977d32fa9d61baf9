package domain

import "strings"

// DocumentHandle identifies a unit of retrievable content.
// IDs come from prior search results and are never generated locally.
type DocumentHandle struct {
	ID string
}

// IndexedDocument is a single document record returned by the index.
type IndexedDocument struct {
	// ID is the index document identifier (doc_id).
	ID string

	// URL is the recorded origin URL, possibly empty.
	URL string

	// Title is the indexed title.
	Title string

	// Fields holds the raw field mapping as returned by the index.
	Fields map[string]any
}

// Text field names in priority order.
const (
	FieldContent = "content"
	FieldBody    = "body"
	FieldDigest  = "digest"
)

// TextFieldPriority is the order in which extracted-text fields are checked.
var TextFieldPriority = []string{FieldContent, FieldBody, FieldDigest}

// FieldText normalises a field value to text.
// Lists are joined with blank lines; surrounding whitespace is trimmed.
func (d *IndexedDocument) FieldText(name string) string {
	if d == nil || d.Fields == nil {
		return ""
	}
	return normaliseField(d.Fields[name])
}

func normaliseField(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []string:
		parts := make([]string, 0, len(val))
		for _, s := range val {
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n\n"))
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := normaliseField(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n\n"))
	default:
		return ""
	}
}

// Origin records where a ContentSource's text came from.
type Origin string

// Content origins.
const (
	OriginIndexField  Origin = "index-field"
	OriginRemoteFetch Origin = "remote-fetch"
)

// FieldIndexCache is recorded as the field when text came from the
// index's own content-serving endpoint.
const FieldIndexCache = "cache"

// ContentSource is resolved document text and its provenance.
// Text is immutable for the duration of a retrieval call.
type ContentSource struct {
	Text   string
	Origin Origin

	// Field names the index field that supplied Text (index-field only).
	Field string

	// URL is the fetched URL (remote-fetch only).
	URL string
}

// ChunkRequest asks for a window of a document's text.
// A nil Offset means 0; a nil Length means the configured maximum.
type ChunkRequest struct {
	DocID  string
	Offset *int
	Length *int
}

// ChunkWindow is a slice of a ContentSource, counted in characters.
type ChunkWindow struct {
	Content     string `json:"content"`
	HasMore     bool   `json:"hasMore"`
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
	TotalLength int    `json:"totalLength"`

	// Source describes the ContentSource origin, e.g. "index-field:content".
	Source string `json:"source,omitempty"`
}

// WholeDocument is the whole-document convenience form of a ChunkWindow.
type WholeDocument struct {
	ChunkWindow

	// Truncated is set when the document exceeded the maximum chunk size.
	Truncated bool `json:"truncated"`

	// Message is a continuation hint, set only when Truncated.
	Message string `json:"message,omitempty"`
}
