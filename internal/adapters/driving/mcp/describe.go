package mcp

import (
	"fmt"
	"strings"
)

const workflowText = `**Efficient agent workflow:**

1. (Optional) Call ` + "`list_labels`" + ` to pick a label scope if you need to restrict the search space.
2. Call ` + "`search`" + ` to get relevant hits and collect ` + "`doc_id`" + `s.
3. Call ` + "`fetch_content_chunk`" + ` (preferred) or ` + "`fetch_content_by_id`" + ` to read extracted text evidence.
4. Refine the query using evidence; optionally use ` + "`suggest`" + ` and ` + "`popular_words`" + ` to expand or pivot.`

// textSource explains where content tools read text from.
func (s *Server) textSource() string {
	out := "**Text source:** index fields (priority: `content` → `body` → `digest`), then the index's cached copy."
	if s.settings.Fetch.Enabled {
		out += " Documents without stored text may be fetched from their origin URL when the content policy allows it."
	}
	return out
}

func (s *Server) limitsText() string {
	return fmt.Sprintf("**Maximum chunk size:** %d characters.", s.settings.Limits.MaxChunkBytes)
}

// describe prefixes a tool description with the knowledge-domain block.
func (s *Server) describe(parts ...string) string {
	return s.settings.Domain.Block() + "\n" + strings.Join(parts, "\n\n")
}

func (s *Server) searchDescription() string {
	l := s.settings.Limits
	args := fmt.Sprintf(`Args:
    query: search term (required)
    label: label value to scope the search (default %q). Use 'all' to search the whole index. Call list_labels to see available labels.
    page_size: results per page (default 20, max %d)
    start: starting index for pagination (default 0)
    sort: sort order
    lang: search language
    include_fields: fields to keep on each hit
    snippets: attach generated snippets to each hit (default false)
    snippet_size_chars: characters per fragment (clamped to [%d, %d], default %d)
    snippet_fragments: fragments per hit (clamped to [1, %d], default %d)
    snippet_docs: hits to enrich (clamped to [1, %d], default %d)
    snippet_tag_pre: opening highlight tag (default '<em>')
    snippet_tag_post: closing highlight tag (default '</em>')
    snippet_scan_max_chars: characters of text scanned for matches (default %d)`,
		s.settings.DefaultLabel, l.MaxPageSize,
		l.SnippetMinChars, l.SnippetMaxChars, l.SnippetDefaultChars,
		l.SnippetMaxFragments, l.SnippetDefaultFragments,
		l.SnippetMaxDocs, l.SnippetDefaultDocs,
		l.SnippetScanMaxChars)

	return s.describe(
		"Search the index and return ranked document hits.\n"+
			"Use this first to turn a keyword or question into a shortlist of candidate documents (capture `doc_id`).",
		workflowText,
		"**Note:** hits may carry only short summary fields. For substantial text evidence use the content fetch tools.",
		"**Snippets (optional):** set `snippets=true` to attach generated snippets under `mcp_snippets`. "+
			"They are built from index text, not index highlight fragments, and their size and count are clamped to configured limits.",
		args,
	)
}

func (s *Server) chunkDescription() string {
	return s.describe(
		"Fetch a window of extracted text for a document.\n"+
			"Use this after `search` when you need substantial evidence.",
		`**Chunking strategy:**

* Start with `+"`offset=0`"+`.
* Request a `+"`length`"+` up to the maximum chunk size.
* If `+"`hasMore=true`"+`, set `+"`offset = offset + length`"+` and call again.
* Repeat until `+"`hasMore=false`"+`.`,
		s.textSource(),
		s.limitsText(),
		`Returns JSON with content, hasMore, offset, length and totalLength. Offsets and lengths count characters.`,
	)
}

func (s *Server) wholeDescription() string {
	return s.describe(
		"Fetch extracted text for a document in one call.\n"+
			"Use when the document should fit within the maximum chunk size. "+
			"Longer documents are truncated; use `fetch_content_chunk` to read the rest.",
		s.textSource(),
		s.limitsText(),
		`Returns JSON with content, totalLength and truncated, plus a continuation message when truncated.`,
	)
}
