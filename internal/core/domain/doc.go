// Package domain defines the core business entities for fess-mcp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - IndexedDocument: A document record as returned by the search index
//   - ContentSource: Resolved document text and its provenance
//   - ChunkWindow: A character-offset slice of a document's text
//   - LabelCatalogSnapshot: The merged view of configured and remote labels
//   - FetchPolicy / Decision: Outbound fetch policy and gateway verdicts
//   - Error: Structured errors carrying a kind, message and hint
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
