// Package normalisers provides implementations of the Normaliser interface
// for the content types a fetched document may arrive in. Each normaliser
// knows how to extract text from a specific MIME type.
//
// Normalisers are registered with the Registry at startup; the fetch path
// and the index-cache fallback both dispatch through it.
package normalisers
