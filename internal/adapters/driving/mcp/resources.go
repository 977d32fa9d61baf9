package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for index resources.
	uriScheme = "fess://"

	contentSuffix = "/content"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         s.labelsURI(),
		Name:        "labels",
		Description: "Label scopes available for search, with descriptions and availability",
		MIMEType:    "application/json",
	}, s.handleLabelsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: s.docPrefix() + "{docId}",
		Name:        "document-metadata",
		Description: "Index metadata for a document. Use the content resource or fetch tools for its text.",
		MIMEType:    "application/json",
	}, s.handleDocResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: s.docPrefix() + "{docId}" + contentSuffix,
		Name:        "document-content",
		Description: "Extracted document text up to the maximum chunk size. " + s.limitsText(),
		MIMEType:    "text/plain",
	}, s.handleDocContentResource)
}

func (s *Server) labelsURI() string {
	return uriScheme + s.settings.Domain.ID + "/labels"
}

func (s *Server) docPrefix() string {
	return uriScheme + s.settings.Domain.ID + "/doc/"
}

// handleLabelsResource serves the same payload as list_labels.
func (s *Server) handleLabelsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return jsonResource(req.Params.URI, NewLabelsOutput(s.ports.Labels.Get(ctx, false), s.settings))
}

// handleDocResource returns the index record for a document.
func (s *Server) handleDocResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	docID, isContent := s.parseDocURI(uri)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if isContent {
		return s.handleDocContentResource(ctx, req)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := s.ports.Content.Metadata(ctx, docID)
	if err != nil {
		return nil, resourceError(uri, err)
	}
	return jsonResource(uri, metadata(doc))
}

// handleDocContentResource returns document text with a truncation notice
// when the document exceeds the maximum chunk size.
func (s *Server) handleDocContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	docID, isContent := s.parseDocURI(uri)
	if docID == "" || !isContent {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	whole, err := s.ports.Content.FetchWhole(ctx, docID)
	if err != nil {
		return nil, resourceError(uri, err)
	}

	text := whole.Content
	if whole.Truncated {
		text += fmt.Sprintf("\n\n[Content truncated at %d characters. %s]",
			whole.Length, s.continuation(docID, whole.Length))
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// parseDocURI extracts the document id from a doc or doc content URI.
func (s *Server) parseDocURI(uri string) (docID string, isContent bool) {
	rest, ok := strings.CutPrefix(uri, s.docPrefix())
	if !ok {
		return "", false
	}
	rest, isContent = strings.CutSuffix(rest, contentSuffix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, isContent
}

// metadata is the index record as agents see it.
func metadata(doc *domain.IndexedDocument) map[string]any {
	out := make(map[string]any, len(doc.Fields)+3)
	for k, v := range doc.Fields {
		out[k] = v
	}
	delete(out, "_id")
	out["doc_id"] = doc.ID
	if doc.Title != "" {
		out["title"] = doc.Title
	}
	if doc.URL != "" {
		out["url"] = doc.URL
	}
	return out
}

func resourceError(uri string, err error) error {
	if domain.KindOf(err) == domain.KindNotFound {
		return mcp.ResourceNotFoundError(uri)
	}
	return err
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
