package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

const ellipsis = "…"

var booleanOperators = regexp.MustCompile(`(?i)\b(AND|OR|NOT)\b`)

// ExtractQueryTerms splits a query into highlightable terms. Boolean
// operators, quotes and surrounding punctuation are removed, and terms of
// a single character are dropped.
func ExtractQueryTerms(query string) []string {
	cleaned := booleanOperators.ReplaceAllString(query, " ")
	cleaned = strings.NewReplacer(`"`, "", "'", "").Replace(cleaned)

	var terms []string
	for _, token := range strings.Fields(cleaned) {
		token = strings.Trim(token, `.,;:!?()[]{}|\`)
		if len([]rune(token)) > 1 {
			terms = append(terms, token)
		}
	}
	return terms
}

// ClampSnippetParams resolves requested snippet settings against limits.
// Values outside the configured range are clamped and reported as such;
// non-positive values are rejected.
func ClampSnippetParams(req domain.SnippetRequest, limits domain.Limits) (domain.SnippetParams, error) {
	p := domain.SnippetParams{
		SizeChars:    limits.SnippetDefaultChars,
		Fragments:    limits.SnippetDefaultFragments,
		Docs:         limits.SnippetDefaultDocs,
		ScanMaxChars: limits.SnippetScanMaxChars,
		TagPre:       req.TagPre,
		TagPost:      req.TagPost,
	}
	if p.TagPre == "" && p.TagPost == "" {
		p.TagPre, p.TagPost = "<em>", "</em>"
	}

	clamp := func(name string, v *int, lo, hi int, out *int) error {
		if v == nil {
			return nil
		}
		if *v < 1 {
			return domain.Validation(
				fmt.Sprintf("%s must be a positive integer, got %d", name, *v),
				fmt.Sprintf("omit %s to use the default", name))
		}
		switch {
		case *v < lo:
			*out = lo
			p.Clamped = true
		case *v > hi:
			*out = hi
			p.Clamped = true
		default:
			*out = *v
		}
		return nil
	}

	if err := clamp("snippet_size_chars", req.SizeChars, limits.SnippetMinChars, limits.SnippetMaxChars, &p.SizeChars); err != nil {
		return p, err
	}
	if err := clamp("snippet_fragments", req.Fragments, 1, limits.SnippetMaxFragments, &p.Fragments); err != nil {
		return p, err
	}
	if err := clamp("snippet_docs", req.Docs, 1, limits.SnippetMaxDocs, &p.Docs); err != nil {
		return p, err
	}
	if err := clamp("snippet_scan_max_chars", req.ScanMaxChars, 1, limits.SnippetScanMaxChars, &p.ScanMaxChars); err != nil {
		return p, err
	}
	return p, nil
}

// GenerateSnippets cuts up to p.Fragments windows of p.SizeChars characters
// around term matches in the first p.ScanMaxChars characters of text.
// Overlapping windows are skipped. Without terms or matches the start of
// the text is returned.
func GenerateSnippets(text string, terms []string, p domain.SnippetParams) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	size := p.SizeChars

	if len(terms) == 0 {
		return []string{leadingFragment(runes, size)}
	}

	lower := lowerRunes(runes)
	scanLimit := min(len(runes), p.ScanMaxChars)
	maxMatches := p.Fragments * 5

	var positions []int
	seen := make(map[int]struct{})
	for _, term := range terms {
		needle := lowerRunes([]rune(term))
		pos := 0
		for pos < scanLimit && len(positions) < maxMatches {
			idx := indexRunes(lower[:scanLimit], needle, pos)
			if idx < 0 {
				break
			}
			if _, dup := seen[idx]; !dup {
				positions = append(positions, idx)
				seen[idx] = struct{}{}
			}
			pos = idx + 1
		}
	}

	if len(positions) == 0 {
		return []string{leadingFragment(runes, size)}
	}
	sort.Ints(positions)

	type span struct{ start, end int }
	var windows []span
	lastEnd := -1
	for _, pos := range positions {
		start := max(0, pos-size/2)
		end := min(len(runes), start+size)
		if end-start < size {
			start = max(0, end-size)
		}
		if start < lastEnd {
			continue
		}
		windows = append(windows, span{start, end})
		lastEnd = end
		if len(windows) >= p.Fragments {
			break
		}
	}

	fragments := make([]string, 0, len(windows))
	for _, w := range windows {
		var b strings.Builder
		if w.start > 0 {
			b.WriteString(ellipsis)
		}
		b.WriteString(Highlight(string(runes[w.start:w.end]), terms, p.TagPre, p.TagPost))
		if w.end < len(runes) {
			b.WriteString(ellipsis)
		}
		fragments = append(fragments, b.String())
	}
	return fragments
}

// Highlight wraps case-insensitive term matches in tags. Longer terms are
// placed first and later matches never overlap earlier ones.
func Highlight(fragment string, terms []string, tagPre, tagPost string) string {
	if len(terms) == 0 {
		return fragment
	}
	runes := []rune(fragment)
	lower := lowerRunes(runes)

	ordered := append([]string(nil), terms...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len([]rune(ordered[i])) > len([]rune(ordered[j]))
	})

	type span struct{ start, end int }
	var spans []span
	for _, term := range ordered {
		needle := lowerRunes([]rune(term))
		for pos := 0; pos < len(runes); {
			idx := indexRunes(lower, needle, pos)
			if idx < 0 {
				break
			}
			end := idx + len(needle)
			overlaps := false
			for _, s := range spans {
				if s.end > idx && s.start < end {
					overlaps = true
					break
				}
			}
			if !overlaps {
				spans = append(spans, span{idx, end})
			}
			pos = idx + 1
		}
	}
	if len(spans) == 0 {
		return fragment
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		b.WriteString(string(runes[pos:s.start]))
		b.WriteString(tagPre)
		b.WriteString(string(runes[s.start:s.end]))
		b.WriteString(tagPost)
		pos = s.end
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

func leadingFragment(runes []rune, size int) string {
	if len(runes) <= size {
		return string(runes)
	}
	return string(runes[:size]) + ellipsis
}

// lowerRunes lower-cases rune by rune so indices stay aligned with the input.
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
