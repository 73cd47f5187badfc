// Command localchat is an interactive chat client for a locally running
// language model.
//
// Usage:
//
//	localchat [flags]
//
// Flags:
//
//	--model string          Model name (default gpt-oss:20b)
//	--system string         System prompt
//	--history-limit int     Turns to remember, 0 disables memory (default 10)
//	--provider string       ollama or gemini (default ollama)
//	--host string           Ollama base URL (default $OLLAMA_HOST or http://127.0.0.1:11434)
//	--api-key string        Gemini API key (default $GEMINI_API_KEY)
//	--temperature float     Sampling temperature
//	--config string         TOML config file
//	--session string        Transcript file to resume and save on exit
//	--show-thinking         Print reasoning fragments
//	--tui                   Full-screen interface
//	--skip-check            Do not check the model at startup
//	--log-level string      debug, info, warn or error (default warn)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fwojciec/localchat"
	bt "github.com/fwojciec/localchat/bubbletea"
	"github.com/fwojciec/localchat/console"
	chatjson "github.com/fwojciec/localchat/json"
	"github.com/fwojciec/localchat/liner"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const checkTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "localchat: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet(&o)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	level, err := parseLogLevel(o.logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	env := readEnvironment()
	configPath := o.configPath
	if configPath == "" {
		configPath = defaultConfigPath(env)
	}
	fc, err := loadFileConfig(configPath, fs.Changed("config"))
	if err != nil {
		return err
	}
	s, err := resolve(fs, o, fc, env)
	if err != nil {
		return err
	}

	session, err := openSession(o.sessionPath, s.config, time.Now())
	if err != nil {
		return err
	}
	s.config = applySession(s.config, session, fs)
	if err := s.config.Validate(); err != nil {
		return err
	}
	session.Model = s.config.Model
	session.SystemPrompt = s.config.SystemPrompt
	session.HistoryLimit = s.config.HistoryLimit

	if o.tui && !term.IsTerminal(int(stdin.Fd())) {
		return fmt.Errorf("--tui requires a terminal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := console.New(stdout, stderr, console.WithShowThinking(s.showThinking))
	out.Starting(s.config.Model)

	provider, hint, err := resolveProvider(ctx, s, logger)
	if err != nil {
		return err
	}
	if !o.skipCheck {
		checkCtx, cancelCheck := context.WithTimeout(ctx, checkTimeout)
		err := checkProvider(checkCtx, provider, s.config.Model, hint)
		cancelCheck()
		if err != nil {
			return err
		}
	}

	store := localchat.NewStore(s.config.HistoryLimit, session.Turns...)
	// A resumed transcript may hold more turns than the new limit keeps.
	session.Turns = store.Snapshot()
	logger.Debug("session ready", "id", session.ID, "provider", s.provider, "model", s.config.Model, "turns", store.Len())

	executor := localchat.NewExecutor(provider, s.config, localchat.WithExecutorLogger(logger))
	onCommit := func(t localchat.Turn) {
		session.Turns = store.Snapshot()
		session.UpdatedAt = t.Timestamp
	}

	var runErr error
	if o.tui {
		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
		defer stop()
		model := bt.New(executor.Execute, store, localchat.DefaultTheme(),
			bt.WithModelName(s.config.Model),
			bt.WithHint(hint),
			bt.WithCommitHook(onCommit),
			bt.WithShowThinking(s.showThinking),
		)
		if err := bt.Run(sigCtx, model); err != nil {
			runErr = fmt.Errorf("TUI: %w", err)
		}
	} else {
		out.Banner(s.config.Model, s.config.SystemPrompt)

		readerOpts := []liner.Option{liner.WithLogger(logger)}
		if env.home != "" {
			readerOpts = append(readerOpts, liner.WithHistoryFile(filepath.Join(env.home, ".localchat", "history")))
		}
		reader := liner.New(readerOpts...)
		loop := localchat.NewLoop(reader, out, executor, store,
			localchat.WithHint(hint),
			localchat.WithCommitHook(onCommit),
			localchat.WithLoopLogger(logger),
		)

		stopSignals := routeSignals(loop, cancel)
		runErr = loop.Run(ctx)
		stopSignals()
		if err := reader.Close(); err != nil {
			logger.Warn("close input", "error", err)
		}
	}

	// Turns committed before a failure are still saved.
	if o.sessionPath != "" {
		if err := saveSession(o.sessionPath, session, store); err != nil {
			return errors.Join(runErr, err)
		}
		logger.Info("session saved", "path", o.sessionPath, "turns", store.Len())
	}
	return runErr
}

// saveSession writes the transcript with the turns the store still holds.
func saveSession(path string, sess localchat.Session, store *localchat.Store) error {
	sess.Turns = store.Snapshot()
	sess.HistoryLimit = store.Limit()
	if err := chatjson.Save(path, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// openSession loads the transcript at path, or starts a new session when path
// is empty or does not exist yet.
func openSession(path string, cfg localchat.Config, now time.Time) (localchat.Session, error) {
	if path != "" {
		sess, err := chatjson.Load(path)
		switch {
		case err == nil:
			return sess, nil
		case !errors.Is(err, os.ErrNotExist):
			return localchat.Session{}, fmt.Errorf("load session: %w", err)
		}
	}
	return localchat.Session{
		ID:           uuid.NewString(),
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		HistoryLimit: cfg.HistoryLimit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// routeSignals sends SIGINT to the loop's in-flight turn. With no turn in
// flight, or on SIGTERM, the whole session is cancelled. The returned func
// stops delivery.
func routeSignals(loop *localchat.Loop, cancel context.CancelFunc) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == os.Interrupt && loop.Interrupt() {
					continue
				}
				cancel()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
