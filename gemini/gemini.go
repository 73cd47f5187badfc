// Package gemini implements [localchat.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between localchat's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [localchat.Stream] interface.
package gemini

// DefaultModel is used when a request does not name a model.
const DefaultModel = "gemini-2.5-flash"
