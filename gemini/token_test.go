package gemini_test

import (
	"context"
	"testing"

	"github.com/poozantata/pagelens/gemini"
	"github.com/stretchr/testify/assert"
)

func TestTokenCounter_CountTokens_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var tc gemini.TokenCounter
	_, err := tc.CountTokens(ctx, "Hello")

	assert.ErrorIs(t, err, context.Canceled)
}
