package conv

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended by Truncate whenever text is cut.
const Ellipsis = "..."

// Truncate keeps at most maxLen runes of text. Cut text gets Ellipsis appended,
// so the result is at most maxLen+len(Ellipsis) runes. maxLen <= 0 disables truncation.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + Ellipsis
}

// SplitChunks splits text into pieces of at most maxLen bytes, preferring newline
// boundaries in the last two thirds of each piece and never cutting a UTF-8 sequence.
// A rune wider than maxLen becomes a chunk of its own.
func SplitChunks(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			// maxLen is narrower than the leading rune, emit the rune whole.
			_, cut = utf8.DecodeRuneInString(text)
		} else if idx := strings.LastIndex(text[:cut], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], " \t\r\n")
	}
	return chunks
}
