package app

import "strings"

// normalizeText collapses runs of whitespace into single spaces so chunk
// boundaries do not land inside caption line breaks.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// chunkText splits text into fixed-size overlapping rune windows. Chunks that
// trim to nothing are skipped.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(normalizeText(text))
	if len(runes) == 0 {
		return nil
	}
	step := size - overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
