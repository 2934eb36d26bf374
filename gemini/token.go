// Package gemini counts tokens of text summaries with the Gemini local
// tokenizer, so scrape summaries can report prompt cost.
package gemini

import (
	"context"
	"sync"

	"github.com/poozantata/pagelens"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultModel selects the tokenizer vocabulary.
const DefaultModel = "gemini-2.0-flash"

var _ pagelens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens offline. It is safe for concurrent use.
type TokenCounter struct {
	mu  sync.Mutex
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the tokenizer for model. The vocabulary is
// downloaded on first use and cached by the tokenizer package.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, pagelens.Errorf(pagelens.EUNAVAILABLE, "load tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the number of tokens in text as a single user turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}

	contents := []*genai.Content{genai.NewContentFromText(text, "user")}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
