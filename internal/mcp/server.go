// Package mcp provides an MCP (Model Context Protocol) server exposing the
// simulation to agent tooling: run simulations, query archived metrics, and
// list past runs over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/rumornet/internal/store"
)

// Server wraps the MCP SDK server around the results archive.
type Server struct {
	server  *sdk.Server
	archive *store.Archive
	logger  *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "rumornet")
	Version string // Server version
	DataDir string // Archive directory
	Logger  *slog.Logger
}

// NewServer creates an MCP server with the simulation tools registered.
func NewServer(cfg *Config) (*Server, error) {
	archive, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:  mcpServer,
		archive: archive,
		logger:  logger,
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport. It blocks until the
// client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.archive.Close()
	return err
}

// Close releases the archive.
func (s *Server) Close() error {
	return s.archive.Close()
}
