package domain

// RawDocument represents opaque bytes obtained from outside the index:
// a remote transfer or the index's content-serving endpoint.
// It is the input to normalisation.
type RawDocument struct {
	// URI is the original location.
	URI string

	// MIMEType is the content type (e.g., "application/pdf"), including
	// parameters such as charset when the origin sent them.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
