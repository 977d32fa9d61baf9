// Package html provides a Normaliser implementation for HTML documents.
// It walks the parsed document tree and keeps readable text, dropping
// scripts, styles and other non-content elements.
package html
