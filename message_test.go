package localchat_test

import (
	"testing"

	"github.com/fwojciec/localchat"
	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	t.Parallel()
	assert.Equal(t, localchat.Message{Role: localchat.RoleUser, Content: "hi"}, localchat.UserMessage("hi"))
	assert.Equal(t, localchat.Message{Role: localchat.RoleAssistant, Content: "hello"}, localchat.AssistantMessage("hello"))
}

func TestHistory_Messages(t *testing.T) {
	t.Parallel()

	t.Run("empty history has no messages", func(t *testing.T) {
		t.Parallel()
		var h localchat.History
		assert.Empty(t, h.Messages())
	})

	t.Run("turns expand to user then assistant in order", func(t *testing.T) {
		t.Parallel()
		h := localchat.History{
			{User: "hi", Assistant: "hello"},
			{User: "bye", Assistant: "goodbye"},
		}
		assert.Equal(t, []localchat.Message{
			localchat.UserMessage("hi"),
			localchat.AssistantMessage("hello"),
			localchat.UserMessage("bye"),
			localchat.AssistantMessage("goodbye"),
		}, h.Messages())
	})
}
