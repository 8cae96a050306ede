package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/sijill/pkg/api"
	"github.com/hazyhaar/sijill/pkg/notify"
	"github.com/hazyhaar/sijill/pkg/records"
	"github.com/hazyhaar/sijill/pkg/source"
)

type sourceConfig struct {
	Type      string `yaml:"type"` // csv, xlsx, sqlite
	Path      string `yaml:"path"`
	Sheet     string `yaml:"sheet,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
	Encoding  string `yaml:"encoding,omitempty"`
	Table     string `yaml:"table,omitempty"`
}

type config struct {
	Addr            string                  `yaml:"addr"`
	NotificationsDB string                  `yaml:"notifications_db"`
	CategoriesFile  string                  `yaml:"categories_file"`
	Sources         map[string]sourceConfig `yaml:"sources"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: sijill <command>\n\nCommands:\n  serve   Start the HTTP server\n  mcp     Serve the MCP tools over stdio\n")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig(*cfgPath, logger)
	reg := buildRegistry(cfg, logger)

	store, err := notify.Open(cfg.NotificationsDB)
	if err != nil {
		logger.Error("failed to open notifications store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewRouter(reg, store, nil),
	}

	// SIGHUP: drop cached indexes so changed exports reload lazily.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, invalidating cached indexes")
			reg.Invalidate()
		}
	}()

	go func() {
		logger.Info("sijill listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:            ":8420",
		NotificationsDB: "notifications.db",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}

// buildRegistry wires every configured category to its tabular source.
// Categories come from the categories file when one is configured, the
// built-in schemas otherwise. A category without a configured source is
// skipped with a warning; it cannot serve queries.
func buildRegistry(cfg config, logger *slog.Logger) *records.Registry {
	cats := records.DefaultCategories()
	if cfg.CategoriesFile != "" {
		loaded, err := records.LoadCategories(cfg.CategoriesFile)
		if err != nil {
			logger.Error("failed to load categories", "error", err)
			os.Exit(1)
		}
		cats = loaded
	}

	reg := records.NewRegistry(logger)
	for _, cat := range cats {
		sc, ok := cfg.Sources[cat.ID]
		if !ok {
			logger.Warn("category has no configured source, skipping", "category", cat.ID)
			continue
		}
		src, err := openSource(sc)
		if err != nil {
			logger.Error("invalid source", "category", cat.ID, "error", err)
			os.Exit(1)
		}
		reg.Add(records.NewCache(src, cat))
		logger.Info("category registered", "category", cat.ID, "type", sc.Type, "path", sc.Path)
	}
	return reg
}

func openSource(sc sourceConfig) (source.Source, error) {
	if sc.Path == "" {
		return nil, fmt.Errorf("missing path")
	}
	switch sc.Type {
	case "csv":
		return &source.CSV{Path: sc.Path, Delimiter: sc.Delimiter, Encoding: sc.Encoding}, nil
	case "xlsx", "":
		return &source.XLSX{Path: sc.Path, Sheet: sc.Sheet}, nil
	case "sqlite":
		if sc.Table == "" {
			return nil, fmt.Errorf("sqlite source needs a table")
		}
		return &source.SQLite{Path: sc.Path, Table: sc.Table}, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", sc.Type)
	}
}
