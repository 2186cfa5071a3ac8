// chat-ai - a terminal client for streaming AI chat over WebSocket.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dclavijo45/chat-ai/internal/auth"
	"github.com/dclavijo45/chat-ai/internal/config"
	"github.com/dclavijo45/chat-ai/internal/engine"
	"github.com/dclavijo45/chat-ai/internal/logging"
	"github.com/dclavijo45/chat-ai/internal/notify"
	"github.com/dclavijo45/chat-ai/internal/socket"
	"github.com/dclavijo45/chat-ai/internal/storage"
	"github.com/dclavijo45/chat-ai/internal/store"
	"github.com/dclavijo45/chat-ai/internal/ui/chat"
	"github.com/dclavijo45/chat-ai/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "path to the config file")
		debug       = flag.Bool("debug", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("chat-ai %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return nil
	}

	path := *configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if *debug {
		cfg.Debug = true
	}

	dataDir, err := cfg.StorageDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// Log to a file; the terminal belongs to the TUI.
	logFile, err := os.OpenFile(filepath.Join(dataDir, "chat-ai.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := logging.NewWithSink(cfg.Debug, logFile)
	defer log.Sync()
	log.Info("starting chat-ai",
		zap.String("version", Version),
		zap.String("server", cfg.Server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := notify.NewFeed()

	// ==========================================================================
	// TRANSPORT
	// ==========================================================================

	client := socket.NewClient(cfg.Server.URL,
		time.Duration(cfg.Server.PingIntervalSecs)*time.Second, log)
	if err := client.Connect(ctx); err != nil {
		// Run anyway; the UI shows the offline state.
		feed.Warning("Couldn't reach the server")
	}
	defer client.Close()

	authState := auth.NewState(cfg.Auth.Token)
	go authState.Listen(ctx, client.Authorizations(), feed, log)

	// ==========================================================================
	// PERSISTENCE AND STATE
	// ==========================================================================

	adapter, err := storage.NewAdapter(dataDir, log)
	if err != nil {
		return err
	}
	sessions, err := adapter.Load()
	if err != nil {
		if errors.Is(err, storage.ErrSchemaVersion) {
			feed.Warning("Stored chats use an unsupported format and were not loaded")
		}
		log.Warn("stored chats not loaded", zap.Error(err))
	}

	st := store.New(store.Config{
		Connector:     client,
		Notifier:      feed,
		Saver:         adapter,
		Auth:          authState,
		Logger:        log,
		DefaultEngine: cfg.DefaultEngine(),
		Sessions:      sessions,
	})
	go st.Listen(ctx)

	catalog := engine.NewCatalog()
	catalog.SetImageCapable(cfg.ImageCapableEngines())
	go func() {
		if err := config.Watch(ctx, path, log, func(c *config.Config) {
			catalog.SetImageCapable(c.ImageCapableEngines())
		}); err != nil {
			log.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	// ==========================================================================
	// UI
	// ==========================================================================

	m := chat.New(chat.Config{
		Theme:   styles.NewTheme(),
		Store:   st,
		Catalog: catalog,
		Adapter: adapter,
		Notices: feed,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat-ai: %w", err)
	}
	return nil
}
