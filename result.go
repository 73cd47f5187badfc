package localchat

// TurnResult is a sealed interface describing how a turn ended.
// The unexported marker method prevents external implementations.
type TurnResult interface {
	turnResult()
}

// TurnSkipped means the input was empty or whitespace. The provider was not
// called; the caller should prompt again.
type TurnSkipped struct{}

func (TurnSkipped) turnResult() {}

// TurnExit means the input asked to end the session. The provider was not
// called and nothing is stored.
type TurnExit struct{}

func (TurnExit) turnResult() {}

// TurnCompleted carries the user text and the full reply, ready to be
// committed. Reply equals the concatenation of every forwarded text fragment.
type TurnCompleted struct {
	User  string
	Reply string
}

func (TurnCompleted) turnResult() {}

// TurnFailed means the provider failed before or during streaming. Partial
// holds the text already forwarded to the caller. Nothing may be committed.
type TurnFailed struct {
	Err     error
	Partial string
}

func (TurnFailed) turnResult() {}

// Interface compliance checks.
var (
	_ TurnResult = TurnSkipped{}
	_ TurnResult = TurnExit{}
	_ TurnResult = TurnCompleted{}
	_ TurnResult = TurnFailed{}
)
