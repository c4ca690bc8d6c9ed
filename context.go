package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deevus/gtnh-translator-tui/config"
	"github.com/deevus/gtnh-translator-tui/internal"
	"github.com/deevus/gtnh-translator-tui/internal/logging"
	"github.com/deevus/gtnh-translator-tui/internal/tunnel"
)

// commandContext carries the persistent flags shared by every command.
type commandContext struct {
	configPath string
	serverName string
	url        string
	logLevel   string
}

// connection is one selected server profile with its services open.
type connection struct {
	name     string
	server   config.ServerConfig
	svc      *internal.Services
	log      *slog.Logger
	closeLog func() error
}

func (c *connection) Close() {
	if c.svc != nil {
		_ = c.svc.Close()
	}
	_ = c.closeLog()
}

// profile loads the config (or builds one from --url) and selects a server.
func (c *commandContext) profile() (*config.Config, string, config.ServerConfig, error) {
	var cfg *config.Config
	var err error
	if c.url != "" {
		cfg, err = config.AdHoc(c.url)
	} else {
		cfg, err = config.LoadFrom(c.configPath)
	}
	if err != nil {
		return nil, "", config.ServerConfig{}, err
	}
	name, server, err := cfg.Select(c.serverName)
	if err != nil {
		return nil, "", config.ServerConfig{}, err
	}
	return cfg, name, server, nil
}

// logger builds the process logger. The TUI owns the terminal, so it logs
// to a file; every other command logs to stderr.
func (c *commandContext) logger(cfg *config.Config, toFile bool) (*slog.Logger, func() error, error) {
	opts := logging.Options{Level: cfg.Log.Level}
	if c.logLevel != "" {
		opts.Level = c.logLevel
	}
	if toFile {
		opts.File = cfg.Log.File
		if opts.File == "" {
			opts.File = logging.DefaultFile()
		}
	}
	logger, closeFn, err := logging.New(opts)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// connect selects the server, sets up logging and opens its services.
func (c *commandContext) connect(ctx context.Context, logToFile bool) (*connection, error) {
	cfg, name, server, err := c.profile()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := c.logger(cfg, logToFile)
	if err != nil {
		return nil, err
	}

	svc, err := internal.NewServices(ctx, server, logger)
	if err != nil {
		_ = closeLog()
		if errors.Is(err, tunnel.ErrNoFingerprint) {
			return nil, fmt.Errorf("%w\nRun `gtnh-translator-tui host-key --server %s` and add the result to [servers.%s.ssh]", err, name, name)
		}
		return nil, err
	}
	logger.Debug("server selected", "server", name, "url", server.URL)

	return &connection{name: name, server: server, svc: svc, log: logger, closeLog: closeLog}, nil
}
