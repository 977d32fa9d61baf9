package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
)

// contentSource is one step of the text resolution strategy list.
// acquire returns (nil, nil) when it has nothing to offer, letting the
// next source try; any error ends resolution.
type contentSource interface {
	name() string
	applies(doc *domain.IndexedDocument) bool
	acquire(ctx context.Context, doc *domain.IndexedDocument) (*domain.ContentSource, error)
}

// originScheme returns the lower-cased scheme of the document's origin
// URL, or "" when it is missing or unparseable.
func originScheme(doc *domain.IndexedDocument) string {
	if doc == nil || doc.URL == "" {
		return ""
	}
	u, err := url.Parse(doc.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// indexFieldSource takes text from the index record: content, body, digest.
type indexFieldSource struct {
	log *zap.Logger
}

func (s *indexFieldSource) name() string { return "index-field" }

func (s *indexFieldSource) applies(*domain.IndexedDocument) bool { return true }

func (s *indexFieldSource) acquire(_ context.Context, doc *domain.IndexedDocument) (*domain.ContentSource, error) {
	for _, field := range domain.TextFieldPriority {
		if text := doc.FieldText(field); text != "" {
			s.log.Debug("text resolved from index field",
				zap.String("doc_id", doc.ID),
				zap.String("field", field),
				zap.Int("length", len(text)))
			return &domain.ContentSource{Text: text, Origin: domain.OriginIndexField, Field: field}, nil
		}
	}
	return nil, nil
}

// indexCacheSource re-queries the index's content-serving endpoint for
// documents whose origin must not be fetched directly (file://, smb://...).
// The origin URL itself is never contacted.
type indexCacheSource struct {
	index       driven.DocumentIndex
	gateway     *Gateway
	normalisers driven.NormaliserRegistry
	log         *zap.Logger
}

func (s *indexCacheSource) name() string { return "index-cache" }

func (s *indexCacheSource) applies(doc *domain.IndexedDocument) bool {
	scheme := originScheme(doc)
	return scheme != "" && !s.gateway.SchemeFetchable(scheme)
}

func (s *indexCacheSource) acquire(ctx context.Context, doc *domain.IndexedDocument) (*domain.ContentSource, error) {
	raw, err := s.index.CachedContent(ctx, doc.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyUpstream(fmt.Sprintf("fetching cached content for %s", doc.ID), err)
	}

	text, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, extractionError(raw, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.log.Debug("text resolved from index cache",
		zap.String("doc_id", doc.ID),
		zap.String("origin", doc.URL),
		zap.Int("length", len(text)))
	return &domain.ContentSource{Text: text, Origin: domain.OriginIndexField, Field: domain.FieldIndexCache}, nil
}

// remoteFetchSource fetches the origin URL through the gateway.
type remoteFetchSource struct {
	gateway     *Gateway
	fetcher     driven.Fetcher
	normalisers driven.NormaliserRegistry
	log         *zap.Logger
}

func (s *remoteFetchSource) name() string { return "remote-fetch" }

func (s *remoteFetchSource) applies(doc *domain.IndexedDocument) bool {
	return s.fetcher != nil && s.gateway.SchemeFetchable(originScheme(doc))
}

func (s *remoteFetchSource) acquire(ctx context.Context, doc *domain.IndexedDocument) (*domain.ContentSource, error) {
	decision, err := s.gateway.Evaluate(ctx, doc.URL)
	if err != nil {
		return nil, classifyUpstream("resolving "+doc.URL, err)
	}
	if !decision.Allowed {
		return nil, decision.Err()
	}

	raw, err := s.fetcher.Fetch(ctx, decision)
	if err != nil {
		return nil, classifyUpstream("fetching "+doc.URL, err)
	}

	if isPDF(raw.MIMEType) && !s.gateway.Policy().EnablePDF {
		return nil, domain.NotFound(
			fmt.Sprintf("document %s is a PDF and PDF extraction is disabled", doc.ID),
			"set contentFetch.enablePdf=true to extract PDF text")
	}

	text, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, extractionError(raw, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.log.Info("text resolved from remote fetch",
		zap.String("doc_id", doc.ID),
		zap.String("url", doc.URL),
		zap.String("mime_type", raw.MIMEType),
		zap.Int("length", len(text)))
	return &domain.ContentSource{Text: text, Origin: domain.OriginRemoteFetch, URL: doc.URL}, nil
}

func isPDF(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/pdf")
}

func extractionError(raw *domain.RawDocument, err error) error {
	if errors.Is(err, domain.ErrUnsupportedType) {
		return &domain.Error{
			Kind:    domain.KindNotFound,
			Message: fmt.Sprintf("no text extractor for content type %q", raw.MIMEType),
			Hint:    "only HTML, PDF and plain text content can be extracted",
			Err:     err,
		}
	}
	return domain.Upstream(fmt.Sprintf("extracting text from %s", raw.URI), err)
}
