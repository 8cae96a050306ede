package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/sijill/pkg/api"
	"github.com/hazyhaar/sijill/pkg/notify"
)

// cmdMCP serves the same search and notification tools over stdio for
// MCP clients. Logs go to stderr; stdout carries the protocol.
func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := loadConfig(*cfgPath, logger)
	reg := buildRegistry(cfg, logger)

	store, err := notify.Open(cfg.NotificationsDB)
	if err != nil {
		logger.Error("failed to open notifications store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := server.NewMCPServer("sijill", "1.0.0",
		server.WithToolCapabilities(false),
	)
	api.RegisterMCPTools(srv, reg, store, nil)

	if err := server.ServeStdio(srv); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
