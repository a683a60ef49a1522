// Package mcp provides the Model Context Protocol server that exposes the
// Figma REST API to AI agents over STDIO transport.
//
// The server exposes six tools:
//
//   - get_components: List the components of a file
//   - get_node: Fetch one node as a simplified tree with a shared style table
//   - get_workflow: List the prototype transitions of a file
//   - get_styles: List the named styles of a file
//   - get_images: Render nodes and return temporary image URLs
//   - download_file: Save the full file JSON to the download directory
//
// The server uses the official MCP Go SDK from github.com/modelcontextprotocol/go-sdk.
// Stdout carries JSON-RPC; all logging goes to stderr.
//
// Usage:
//
//	figma-mcp --figma-api-key=<key>
package mcp
