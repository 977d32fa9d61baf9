// Package fetch implements the bounded remote transfer behind the content
// gateway: an HTTP fetcher that re-checks every dialled address, follows
// redirects only when the gateway allows the new location, and refuses
// bodies larger than the configured limit.
package fetch
