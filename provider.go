package localchat

import "context"

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream().
//
// Next returns events in generation order and io.EOF once the reply is
// complete. Any other error is terminal: subsequent calls return the same
// error. A Stream cannot be restarted. Close releases the underlying
// connection and is safe to call after any terminal state.
type Stream interface {
	Next() (Event, error)
	Close() error
}

// Provider is a strategy pattern interface for completion providers.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Checker is implemented by providers that can verify, before the session
// starts, that the server is reachable and the model is available.
type Checker interface {
	Check(ctx context.Context, model string) error
}
