// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SearchIndex: The Fess REST API (search, document lookup, labels)
//   - LabelSource: The remote label catalog (a subset of SearchIndex)
//   - Resolver: DNS resolution for the fetch gateway
//   - NormaliserRegistry: Selects the text extractor for fetched content
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Fetcher: Bounded remote transfer. Without it, remote fetch is unavailable.
//   - ContentCache: Transparent memoisation of resolved document text.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
