package domain

// SearchOptions configures a search query against the index.
type SearchOptions struct {
	// Label scopes the search. Empty or "all" means no filter.
	Label string

	// Start is the number of results to skip.
	Start int

	// PageSize is the maximum number of results.
	PageSize int

	// Sort is passed through to the index.
	Sort string

	// Lang is the search language.
	Lang string
}

// SearchResponse is the index's response to a search, kept as a loose
// mapping so that fields the index adds pass through to callers untouched.
type SearchResponse struct {
	// Raw is the decoded response body.
	Raw map[string]any

	// Hits are the documents in Raw["data"].
	Hits []map[string]any

	// RecordCount is the total number of matches reported by the index.
	RecordCount int
}

// SearchRequest is an inbound search call.
type SearchRequest struct {
	Query    string
	Label    *string
	PageSize *int
	Start    *int
	Sort     string
	Lang     string

	// IncludeFields limits the keys kept on each hit.
	IncludeFields []string

	Snippets SnippetRequest
}

// SnippetRequest holds the optional snippet generation arguments.
// Nil pointers select configured defaults.
type SnippetRequest struct {
	Enabled      bool
	SizeChars    *int
	Fragments    *int
	Docs         *int
	ScanMaxChars *int
	TagPre       string
	TagPost      string
}

// SnippetParams are the effective snippet settings after clamping.
type SnippetParams struct {
	SizeChars    int
	Fragments    int
	Docs         int
	ScanMaxChars int
	TagPre       string
	TagPost      string
	Clamped      bool
}

// SuggestOptions configures a suggestion lookup.
type SuggestOptions struct {
	Label  string
	Num    int
	Fields []string
	Lang   string
}

// PopularWordsOptions configures a popular-words lookup.
type PopularWordsOptions struct {
	Label string
	Seed  *int
	Field string
}
