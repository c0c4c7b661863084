package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

const encodingName = "cl100k_base"

// Counter counts BPE tokens for sequence-length budgeting. The exact
// vocabulary of the fine-tuned checkpoint does not matter here; the
// cap only needs a stable, realistic token count.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

func NewCounter() (*Counter, error) {
	tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Counter{encoding: encoding}, nil
}

func (c *Counter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// FitsBudget reports whether text stays within maxTokens. A
// non-positive budget disables the cap.
func (c *Counter) FitsBudget(text string, maxTokens int) bool {
	if maxTokens <= 0 {
		return true
	}
	return c.Count(text) <= maxTokens
}
