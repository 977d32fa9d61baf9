// Package fess implements driven.SearchIndex over the Fess REST API.
//
// Every request is throttled by an optional token bucket, bounded by the
// configured request timeout, and authenticated with a bearer token when one
// is configured. Responses are decoded into loose maps so that fields Fess
// adds in newer versions pass through untouched.
package fess
