package config

import (
	"encoding/json"
	"fmt"
)

// ServerName is the key the server is registered under in IDE configs.
const ServerName = "figma"

// ClientServer is one entry of an MCP client's mcpServers map.
type ClientServer struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// ClientConfig is the JSON document IDEs (Cursor, Claude Desktop, VS Code
// and friends) read to spawn MCP servers.
type ClientConfig struct {
	MCPServers map[string]ClientServer `json:"mcpServers"`
}

// NewClientConfig builds the config launching command with the key passed
// as a flag. An empty key leaves a placeholder for the user to fill in.
func NewClientConfig(command, apiKey string, extraArgs ...string) ClientConfig {
	if apiKey == "" {
		apiKey = "<your-figma-api-key>"
	}
	args := append([]string{fmt.Sprintf("--%s=%s", FlagAPIKey, apiKey)}, extraArgs...)
	return ClientConfig{
		MCPServers: map[string]ClientServer{
			ServerName: {Command: command, Args: args},
		},
	}
}

// Marshal renders the config with two-space indentation.
func (c ClientConfig) Marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
