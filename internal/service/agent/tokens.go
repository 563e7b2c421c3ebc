package agent

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding(encodingName)
	})
	return tk, tkErr
}

// CountTokens counts cl100k tokens. When the encoding cannot be loaded it falls back to estimateTokens.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	enc, err := getTokenizer()
	if err != nil {
		return estimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// estimateTokens assumes about four characters per token.
func estimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}
