package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/localchat"
	bt "github.com/fwojciec/localchat/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.TurnFunc, opts ...bt.Option) bt.Model {
	t.Helper()
	return initModelWithSize(t, run, 80, 24, opts...)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, run bt.TurnFunc, width, height int, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(run, localchat.NewStore(localchat.DefaultHistoryLimit), localchat.DefaultTheme(), opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// nopTurn completes every turn with an empty reply.
func nopTurn(_ context.Context, _ localchat.History, input string, _ func(localchat.Event)) localchat.TurnResult {
	return localchat.TurnCompleted{User: input}
}
