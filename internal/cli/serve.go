// Package cli implements the figma-mcp commands. Each command writes to
// the given stdout/stderr and returns a process exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"figmamcp/internal/config"
	"figmamcp/internal/figma"
	"figmamcp/internal/logging"
	"figmamcp/internal/mcp"
	"figmamcp/internal/snapshot"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServeOptions configures the Serve command.
type ServeOptions struct {
	APIKey string
	// APIKeySource is where ff took APIKey from. Empty means the command
	// line.
	APIKeySource config.Source

	BaseURL           string
	DownloadDir       string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
	LogLevel          string

	// ConfigFile is watched for key rotation when WatchConfig is set.
	ConfigFile  string
	WatchConfig bool

	// NoKeyring skips the OS credential store when resolving the key.
	NoKeyring bool

	// Getenv defaults to os.Getenv (for testing).
	Getenv func(string) string
	// Credentials defaults to the OS credential store (for testing).
	Credentials config.KeyGetter
	// Transport defaults to STDIO (for testing).
	Transport sdk.Transport
}

// Serve implements the default command: resolve the API key and run the
// MCP server until the client disconnects or ctx is canceled.
//
// Exit Codes:
// - 0: Normal shutdown
// - 1: Missing API key, invalid flags, or server failure
//
// Stdout carries the MCP protocol and nothing else. Diagnostics go to
// stderr.
func Serve(ctx context.Context, stderr io.Writer, opts ServeOptions) int {
	logger, err := logging.New(logging.Options{Level: opts.LogLevel, Output: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	creds := opts.Credentials
	if creds == nil && !opts.NoKeyring {
		creds = config.NewCredentials()
	}

	key, source, err := config.Resolve(config.ResolveOptions{
		FlagKey:     opts.APIKey,
		Getenv:      opts.Getenv,
		Credentials: creds,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if source == config.SourceFlag && opts.APIKeySource != "" {
		source = opts.APIKeySource
	}
	logger.Debug("resolved API key", "source", string(source), "key", logging.Redact(key))

	store := config.NewKeyStore(key, source)

	client, err := figma.NewClient(store, figma.Options{
		BaseURL:           opts.BaseURL,
		UserAgent:         "figma-mcp/" + mcp.Version,
		Timeout:           opts.Timeout,
		MaxRetries:        opts.MaxRetries,
		RequestsPerMinute: opts.RequestsPerMinute,
		Logger:            logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	server, err := mcp.NewServer(&mcp.ServerOptions{
		Client:    client,
		Snapshots: snapshot.New(opts.DownloadDir),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.WatchConfig && opts.ConfigFile != "" {
		watcher, err := config.NewWatcher(opts.ConfigFile, store, logger)
		if err != nil {
			// Key rotation is a convenience; serve with the key we have.
			logger.Warn("config watching disabled", "path", opts.ConfigFile, "error", err)
		} else {
			defer watcher.Close()
			go func() {
				if err := watcher.Run(); err != nil {
					logger.Warn("config watcher stopped", "error", err)
				}
			}()
		}
	}

	if err := server.Run(ctx, opts.Transport); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
