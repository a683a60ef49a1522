package cli

import (
	"fmt"
	"io"

	"figmamcp/internal/config"
	"figmamcp/internal/mcp"
)

const helpText = `figma-mcp - Model Context Protocol server for the Figma REST API

USAGE:
    figma-mcp [--figma-api-key=<key>] [flags]
    figma-mcp <command> [arguments]

COMMANDS:
    auth login [<key>]    Store the API key in the OS credential store
                          The key can be piped via stdin
    auth logout           Remove the stored API key
    auth status           Show where the API key comes from
    config                Print the MCP client configuration for your IDE
    version               Show version information

The API key is read from --figma-api-key, then FIGMA_API_TOKEN, then the
OS credential store. A .env file in the working directory is loaded first.

EXAMPLES:
    figma-mcp --figma-api-key=figd_xxx
    echo figd_xxx | figma-mcp auth login
    figma-mcp --figma-api-key=figd_xxx config > .cursor/mcp.json
`

// Help writes the help text to stdout and returns exit code 0.
func Help(stdout io.Writer) int {
	fmt.Fprint(stdout, helpText)
	return 0
}

// Version writes the version and returns exit code 0.
func Version(stdout io.Writer) int {
	fmt.Fprintf(stdout, "figma-mcp version %s\n", mcp.Version)
	return 0
}

// PrintConfigOptions configures the config command.
type PrintConfigOptions struct {
	// Command is the executable path written into the config. Defaults to
	// "figma-mcp", which relies on PATH lookup by the IDE.
	Command string
	// APIKey is embedded as --figma-api-key; empty writes a placeholder.
	APIKey string
	// ExtraArgs are appended after the key flag.
	ExtraArgs []string
}

// PrintConfig writes the MCP client configuration JSON an IDE uses to
// spawn this server.
func PrintConfig(stdout, stderr io.Writer, opts PrintConfigOptions) int {
	command := opts.Command
	if command == "" {
		command = "figma-mcp"
	}

	data, err := config.NewClientConfig(command, opts.APIKey, opts.ExtraArgs...).Marshal()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(data))
	return 0
}
