// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval core lives here: the outbound fetch Gateway, the
// LabelCatalog snapshot cache, the ContentService with its ordered list of
// text sources, and the Limiter that bounds concurrent inbound calls.
package services
