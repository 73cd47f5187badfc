package gemini

import (
	"context"
	"iter"

	"github.com/fwojciec/localchat"
	"google.golang.org/genai"
)

var BuildConfig = buildConfig

// NewStreamFromIter exposes the stream constructor for tests.
func NewStreamFromIter(ctx context.Context, it iter.Seq2[*genai.GenerateContentResponse, error]) localchat.Stream {
	return newStream(ctx, it)
}
