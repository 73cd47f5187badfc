package json_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/localchat"
	chatjson "github.com/fwojciec/localchat/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() localchat.Session {
	return localchat.Session{
		ID:           "3f1c0b7e-9a0e-4d0b-8d6c-2f4b8a1e9c55",
		Model:        "gpt-oss:20b",
		SystemPrompt: "You are helpful.",
		HistoryLimit: 4,
		CreatedAt:    time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 2, 18, 12, 5, 0, 0, time.UTC),
		Turns: localchat.History{
			{User: "What is Go?", Assistant: "A programming language.", Timestamp: time.Date(2026, 2, 18, 12, 1, 0, 0, time.UTC)},
			{User: "Who made it?", Assistant: "Google.", Timestamp: time.Date(2026, 2, 18, 12, 2, 0, 0, time.UTC)},
		},
	}
}

func TestMarshalSession_RoundTrip(t *testing.T) {
	t.Parallel()
	session := sampleSession()

	data, err := chatjson.MarshalSession(session)
	require.NoError(t, err)

	got, err := chatjson.UnmarshalSession(data)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.Model, got.Model)
	assert.Equal(t, session.SystemPrompt, got.SystemPrompt)
	assert.Equal(t, session.HistoryLimit, got.HistoryLimit)
	assert.True(t, session.CreatedAt.Equal(got.CreatedAt), "CreatedAt mismatch")
	assert.True(t, session.UpdatedAt.Equal(got.UpdatedAt), "UpdatedAt mismatch")
	require.Len(t, got.Turns, 2)
	for i := range session.Turns {
		assert.Equal(t, session.Turns[i].User, got.Turns[i].User)
		assert.Equal(t, session.Turns[i].Assistant, got.Turns[i].Assistant)
		assert.True(t, session.Turns[i].Timestamp.Equal(got.Turns[i].Timestamp))
	}
}

func TestMarshalSession_V1Envelope(t *testing.T) {
	t.Parallel()

	data, err := chatjson.MarshalSession(sampleSession())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, float64(1), raw["version"])
	assert.Equal(t, "gpt-oss:20b", raw["model"])
	assert.Equal(t, "You are helpful.", raw["system_prompt"])
	assert.Equal(t, float64(4), raw["history_limit"])
	assert.Equal(t, "2026-02-18T12:00:00Z", raw["created_at"])

	turns := raw["turns"].([]any)
	require.Len(t, turns, 2)
	first := turns[0].(map[string]any)
	assert.Equal(t, "What is Go?", first["user"])
	assert.Equal(t, "A programming language.", first["assistant"])
	assert.Equal(t, "2026-02-18T12:01:00Z", first["timestamp"])
}

func TestMarshalSession_EmptySession(t *testing.T) {
	t.Parallel()

	data, err := chatjson.MarshalSession(localchat.Session{ID: "empty"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"turns": []`)

	got, err := chatjson.UnmarshalSession(data)
	require.NoError(t, err)
	assert.Equal(t, "empty", got.ID)
	assert.Empty(t, got.Turns)
}

func TestUnmarshalSession_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"malformed", `{`, "unmarshal envelope"},
		{"unsupported version", `{"version": 99, "turns": []}`, "unsupported envelope version: 99"},
		{"missing version", `{"id": "x", "turns": []}`, "unsupported envelope version: 0"},
		{"negative limit", `{"version": 1, "history_limit": -1}`, "invalid history limit"},
		{"turn without user", `{"version": 1, "turns": [{"assistant": "hi"}]}`, "turn 0: missing user message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := chatjson.UnmarshalSession([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSave_And_Load(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")
	session := sampleSession()

	require.NoError(t, chatjson.Save(path, session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := chatjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, "Google.", got.Turns[1].Assistant)
}

func TestSave_Overwrites(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")
	session := sampleSession()
	require.NoError(t, chatjson.Save(path, session))

	session.Turns = session.Turns[1:]
	require.NoError(t, chatjson.Save(path, session))

	got, err := chatjson.Load(path)
	require.NoError(t, err)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "Who made it?", got.Turns[0].User)
}

func TestSave_CreatesParentDirectories(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "deep", "session.json")

	require.NoError(t, chatjson.Save(path, localchat.Session{ID: "nested-save"}))

	got, err := chatjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nested-save", got.ID)
}

func TestLoad_NonexistentFile(t *testing.T) {
	t.Parallel()
	_, err := chatjson.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
