package localchat

// Message is a single conversation message as sent to a Provider.
type Message struct {
	Role    Role
	Content string
}

// UserMessage returns a Message with RoleUser.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns a Message with RoleAssistant.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
