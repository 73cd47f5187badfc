// Package json persists chat sessions as versioned JSON transcripts.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/localchat"
)

const version = 1

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version      int       `json:"version"`
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	HistoryLimit int       `json:"history_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Turns        []turnDTO `json:"turns"`
}

// turnDTO is the JSON representation of a committed Turn.
type turnDTO struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s localchat.Session) ([]byte, error) {
	env := envelope{
		Version:      version,
		ID:           s.ID,
		Model:        s.Model,
		SystemPrompt: s.SystemPrompt,
		HistoryLimit: s.HistoryLimit,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Turns:        make([]turnDTO, len(s.Turns)),
	}
	for i, t := range s.Turns {
		env.Turns[i] = turnDTO{User: t.User, Assistant: t.Assistant, Timestamp: t.Timestamp}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (localchat.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return localchat.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != version {
		return localchat.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	if env.HistoryLimit < 0 {
		return localchat.Session{}, fmt.Errorf("invalid history limit: %d", env.HistoryLimit)
	}
	var turns localchat.History
	if len(env.Turns) > 0 {
		turns = make(localchat.History, len(env.Turns))
	}
	for i, dto := range env.Turns {
		if dto.User == "" {
			return localchat.Session{}, fmt.Errorf("turn %d: missing user message", i)
		}
		turns[i] = localchat.Turn{User: dto.User, Assistant: dto.Assistant, Timestamp: dto.Timestamp}
	}
	return localchat.Session{
		ID:           env.ID,
		Model:        env.Model,
		SystemPrompt: env.SystemPrompt,
		HistoryLimit: env.HistoryLimit,
		Turns:        turns,
		CreatedAt:    env.CreatedAt,
		UpdatedAt:    env.UpdatedAt,
	}, nil
}

// Save writes a Session to a JSON file, creating parent directories as needed.
// The file is replaced atomically.
func Save(path string, s localchat.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Session from a JSON file.
func Load(path string) (localchat.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return localchat.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}
