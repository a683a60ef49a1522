package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"figmamcp/internal/cli"
	"figmamcp/internal/config"
	"figmamcp/internal/figma"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	// A .env in the working directory seeds the environment before any
	// flag or env var is read.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	defaults := figma.DefaultOptions()

	// Root command flags
	rootFlagSet := flag.NewFlagSet("figma-mcp", flag.ContinueOnError)
	var (
		apiKey      = rootFlagSet.String(config.FlagAPIKey, "", "Figma personal access token")
		baseURL     = rootFlagSet.String("api-base-url", defaults.BaseURL, "Figma REST API base URL")
		downloadDir = rootFlagSet.String("download-dir", ".", "directory download_file writes <file_key>.json into")
		timeout     = rootFlagSet.Duration("timeout", defaults.Timeout, "per-request timeout for Figma API calls")
		maxRetries  = rootFlagSet.Int("max-retries", defaults.MaxRetries, "retries for 429 and 5xx responses")
		rateLimit   = rootFlagSet.Int("rate-limit", 0, "maximum Figma requests per minute (0 disables)")
		logLevel    = rootFlagSet.String("log-level", "info", "log level: debug, info, warn, error")
		watchConfig = rootFlagSet.Bool("watch-config", false, "reload the API key when the config file changes")
		noKeyring   = rootFlagSet.Bool("no-keyring", false, "do not read the API key from the OS credential store")
		configFile  = rootFlagSet.String("config", config.DefaultConfigFile(), "config file (plain \"name value\" lines)")
	)

	// Version command (no flags)
	versionCmd := &ffcli.Command{
		Name:       "version",
		ShortUsage: "figma-mcp version",
		ShortHelp:  "Show version information",
		FlagSet:    flag.NewFlagSet("figma-mcp version", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			os.Exit(cli.Version(os.Stdout))
			return nil
		},
	}

	// Auth login flags
	loginFlagSet := flag.NewFlagSet("figma-mcp auth login", flag.ContinueOnError)
	loginKey := loginFlagSet.String(config.FlagAPIKey, "", "Figma personal access token to store")

	loginCmd := &ffcli.Command{
		Name:       "login",
		ShortUsage: "figma-mcp auth login [--figma-api-key=<key>] [<key>]",
		ShortHelp:  "Store the API key in the OS credential store",
		LongHelp: `Store a Figma personal access token in the OS credential store
(macOS Keychain, Secret Service, Windows Credential Manager).

The server reads it when neither --figma-api-key nor FIGMA_API_TOKEN is set.
The key can be piped via stdin to keep it out of shell history.

Examples:
  figma-mcp auth login figd_xxx
  figma-mcp auth login --figma-api-key=figd_xxx
  pbpaste | figma-mcp auth login`,
		FlagSet: loginFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			exitCode := cli.AuthLogin(args, os.Stdin, os.Stdout, os.Stderr, cli.AuthOptions{
				APIKey: *loginKey,
			})
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	logoutCmd := &ffcli.Command{
		Name:       "logout",
		ShortUsage: "figma-mcp auth logout",
		ShortHelp:  "Remove the stored API key",
		FlagSet:    flag.NewFlagSet("figma-mcp auth logout", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			exitCode := cli.AuthLogout(os.Stdout, os.Stderr, cli.AuthOptions{})
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	statusCmd := &ffcli.Command{
		Name:       "status",
		ShortUsage: "figma-mcp [--figma-api-key=<key>] auth status",
		ShortHelp:  "Show where the API key comes from",
		FlagSet:    flag.NewFlagSet("figma-mcp auth status", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			exitCode := cli.AuthStatus(os.Stdout, os.Stderr, cli.AuthOptions{
				APIKey:       *apiKey,
				APIKeySource: cli.FlagKeySource(rootFlagSet, os.Args[1:], os.Getenv),
				NoKeyring:    *noKeyring,
			})
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	authCmd := &ffcli.Command{
		Name:        "auth",
		ShortUsage:  "figma-mcp auth <login|logout|status>",
		ShortHelp:   "Manage the stored Figma API key",
		FlagSet:     flag.NewFlagSet("figma-mcp auth", flag.ContinueOnError),
		Subcommands: []*ffcli.Command{loginCmd, logoutCmd, statusCmd},
		Exec: func(ctx context.Context, args []string) error {
			fmt.Fprintln(os.Stderr, "usage: figma-mcp auth <login|logout|status>")
			os.Exit(1)
			return nil
		},
	}

	configCmd := &ffcli.Command{
		Name:       "config",
		ShortUsage: "figma-mcp [--figma-api-key=<key>] config",
		ShortHelp:  "Print the MCP client configuration for your IDE",
		LongHelp: `Print the mcpServers JSON that Cursor, Claude Desktop, VS Code and
other MCP clients use to launch this server.

The command points at this executable. Without --figma-api-key the key is
left as a placeholder.

Examples:
  figma-mcp config
  figma-mcp --figma-api-key=figd_xxx config > .cursor/mcp.json`,
		FlagSet: flag.NewFlagSet("figma-mcp config", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			command, err := os.Executable()
			if err != nil {
				command = ""
			}
			exitCode := cli.PrintConfig(os.Stdout, os.Stderr, cli.PrintConfigOptions{
				Command:   command,
				APIKey:    *apiKey,
				ExtraArgs: args,
			})
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	// Root command help text
	rootHelp := `figma-mcp - Model Context Protocol server for the Figma REST API

Without a subcommand, starts the MCP server on STDIO. Tools exposed:
  get_components  List components in a file
  get_node        Simplified node tree with extracted styles
  get_workflow    Prototype connections between frames
  get_styles      Published styles in a file
  get_images      Render nodes to image URLs
  download_file   Save the raw file JSON to <file_key>.json

The API key is read from --figma-api-key, then FIGMA_API_TOKEN, then the
OS credential store. Every flag can also be set as FIGMA_MCP_<FLAG> or in
the config file.

Use "figma-mcp <command> --help" for more information about a command.`

	// Root command
	root := &ffcli.Command{
		ShortUsage:  "figma-mcp [--figma-api-key=<key>] [flags] [<command>]",
		ShortHelp:   "Model Context Protocol server for the Figma REST API",
		LongHelp:    rootHelp,
		FlagSet:     rootFlagSet,
		Subcommands: []*ffcli.Command{versionCmd, authCmd, configCmd},
		Options: []ff.Option{
			ff.WithEnvVarPrefix(config.EnvPrefix),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
			ff.WithAllowMissingConfigFile(true),
		},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", args[0])
				cli.Help(os.Stderr)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			exitCode := cli.Serve(ctx, os.Stderr, cli.ServeOptions{
				APIKey:            *apiKey,
				APIKeySource:      cli.FlagKeySource(rootFlagSet, os.Args[1:], os.Getenv),
				BaseURL:           *baseURL,
				DownloadDir:       *downloadDir,
				Timeout:           *timeout,
				MaxRetries:        *maxRetries,
				RequestsPerMinute: *rateLimit,
				LogLevel:          *logLevel,
				ConfigFile:        *configFile,
				WatchConfig:       *watchConfig,
				NoKeyring:         *noKeyring,
			})
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
