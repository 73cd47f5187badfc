package localchat

import "time"

// Session is the persisted form of a conversation, used to resume it in a
// later process.
type Session struct {
	ID           string
	Model        string
	SystemPrompt string
	HistoryLimit int
	Turns        History
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
