package services

import "github.com/custodia-labs/fess-mcp/internal/core/domain"

// sliceWindow cuts a window of runes out of text. The caller guarantees
// 0 <= offset <= len(runes) and length > 0.
//
// returned = min(length, total-offset); hasMore = offset+returned < total.
func sliceWindow(runes []rune, offset, length int) domain.ChunkWindow {
	total := len(runes)
	end := offset + length
	if end > total || end < offset {
		end = total
	}
	content := string(runes[offset:end])
	returned := end - offset

	return domain.ChunkWindow{
		Content:     content,
		HasMore:     offset+returned < total,
		Offset:      offset,
		Length:      returned,
		TotalLength: total,
	}
}
