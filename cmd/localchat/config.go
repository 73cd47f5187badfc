package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/localchat"
	"github.com/fwojciec/localchat/ollama"
	"github.com/spf13/pflag"
)

// options holds raw flag values. Whether a flag was set explicitly is
// answered by the FlagSet.
type options struct {
	model        string
	system       string
	historyLimit int
	provider     string
	host         string
	apiKey       string
	temperature  float64
	configPath   string
	sessionPath  string
	showThinking bool
	tui          bool
	skipCheck    bool
	logLevel     string
}

func newFlagSet(o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("localchat", pflag.ContinueOnError)
	fs.StringVar(&o.model, "model", localchat.DefaultModel, "model name")
	fs.StringVar(&o.system, "system", localchat.DefaultSystemPrompt, "system prompt")
	fs.IntVar(&o.historyLimit, "history-limit", localchat.DefaultHistoryLimit, "number of turns to remember (0 disables memory)")
	fs.StringVar(&o.provider, "provider", providerOllama, "completion provider: ollama, gemini")
	fs.StringVar(&o.host, "host", "", "Ollama base URL (default $OLLAMA_HOST or "+ollama.DefaultHost+")")
	fs.StringVar(&o.apiKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY)")
	fs.Float64Var(&o.temperature, "temperature", 0, "sampling temperature (default: provider default)")
	fs.StringVar(&o.configPath, "config", "", "TOML config file (default $XDG_CONFIG_HOME/localchat/config.toml)")
	fs.StringVar(&o.sessionPath, "session", "", "transcript file to resume and save on exit")
	fs.BoolVar(&o.showThinking, "show-thinking", false, "print reasoning fragments")
	fs.BoolVar(&o.tui, "tui", false, "full-screen interface")
	fs.BoolVar(&o.skipCheck, "skip-check", false, "do not check the model at startup")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	return fs
}

// fileConfig is the TOML config file. Unset keys are nil.
type fileConfig struct {
	Model        *string  `toml:"model"`
	System       *string  `toml:"system"`
	HistoryLimit *int     `toml:"history_limit"`
	Provider     *string  `toml:"provider"`
	Host         *string  `toml:"host"`
	Temperature  *float64 `toml:"temperature"`
	ShowThinking *bool    `toml:"show_thinking"`
}

// environment carries the environment variables the command reads. They are
// read once in run and passed down as values.
type environment struct {
	ollamaHost    string
	geminiKey     string
	xdgConfigHome string
	home          string
}

func readEnvironment() environment {
	home, _ := os.UserHomeDir()
	return environment{
		ollamaHost:    os.Getenv("OLLAMA_HOST"),
		geminiKey:     os.Getenv("GEMINI_API_KEY"),
		xdgConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		home:          home,
	}
}

// defaultConfigPath returns the config file consulted when --config is not
// given, or "" when no location can be determined.
func defaultConfigPath(env environment) string {
	switch {
	case env.xdgConfigHome != "":
		return filepath.Join(env.xdgConfigHome, "localchat", "config.toml")
	case env.home != "":
		return filepath.Join(env.home, ".config", "localchat", "config.toml")
	}
	return ""
}

// loadFileConfig decodes the config file at path. A missing file is only an
// error when the path was given explicitly.
func loadFileConfig(path string, explicit bool) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fileConfig{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return fc, nil
}

// settings is the resolved startup configuration.
type settings struct {
	config       localchat.Config
	provider     string
	host         string
	apiKey       string
	showThinking bool
}

// resolve merges flags, the config file and the environment. Explicit flags
// win over file values, which win over environment values and defaults.
func resolve(fs *pflag.FlagSet, o options, fc fileConfig, env environment) (settings, error) {
	set := fs.Changed

	s := settings{
		config:       localchat.DefaultConfig(),
		provider:     pick(set("provider"), o.provider, fc.Provider, providerOllama),
		showThinking: pick(set("show-thinking"), o.showThinking, fc.ShowThinking, false),
		apiKey:       o.apiKey,
	}
	if s.apiKey == "" {
		s.apiKey = env.geminiKey
	}

	defaultModel := localchat.DefaultModel
	if s.provider == providerGemini {
		defaultModel = geminiDefaultModel
	}
	s.config.Model = pick(set("model"), o.model, fc.Model, defaultModel)
	s.config.SystemPrompt = pick(set("system"), o.system, fc.System, localchat.DefaultSystemPrompt)
	s.config.HistoryLimit = pick(set("history-limit"), o.historyLimit, fc.HistoryLimit, localchat.DefaultHistoryLimit)

	switch {
	case set("temperature"):
		t := o.temperature
		s.config.Temperature = &t
	case fc.Temperature != nil:
		t := *fc.Temperature
		s.config.Temperature = &t
	}

	envHost := ollama.DefaultHost
	if env.ollamaHost != "" {
		envHost = env.ollamaHost
	}
	s.host = normalizeHost(pick(set("host"), o.host, fc.Host, envHost))

	if err := s.config.Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

// pick returns the flag value when it was set, else the file value when
// present, else def.
func pick[T any](flagSet bool, flagValue T, fileValue *T, def T) T {
	if flagSet {
		return flagValue
	}
	if fileValue != nil {
		return *fileValue
	}
	return def
}

// normalizeHost turns an OLLAMA_HOST style value into a base URL. A bare
// host:port gets an http scheme.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ollama.DefaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/")
}

// applySession lets a resumed transcript supply the model, system prompt and
// history limit unless they were given explicitly on the command line.
func applySession(cfg localchat.Config, sess localchat.Session, fs *pflag.FlagSet) localchat.Config {
	if sess.Model != "" && !fs.Changed("model") {
		cfg.Model = sess.Model
	}
	if sess.SystemPrompt != "" && !fs.Changed("system") {
		cfg.SystemPrompt = sess.SystemPrompt
	}
	if !fs.Changed("history-limit") {
		cfg.HistoryLimit = sess.HistoryLimit
	}
	return cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", s, localchat.ErrValidation)
	}
	return level, nil
}
