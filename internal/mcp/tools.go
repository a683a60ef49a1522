package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"figmamcp/internal/snapshot"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names as constants for consistent reference.
const (
	ToolGetComponents = "get_components"
	ToolGetNode       = "get_node"
	ToolGetWorkflow   = "get_workflow"
	ToolGetStyles     = "get_styles"
	ToolGetImages     = "get_images"
	ToolDownloadFile  = "download_file"
)

const fileKeyDescription = "The file key found in the shared Figma URL, or the URL itself. " +
	"E.g. for https://www.figma.com/proto/do4pJqHwNwH1nBrrscu6Ld/Untitled?node-id=0-3 the file key is do4pJqHwNwH1nBrrscu6Ld"

// FileArgs is the input of the tools that only need a file.
type FileArgs struct {
	FileKey string `json:"file_key"`
}

// NodeArgs is the input of get_node.
type NodeArgs struct {
	FileKey string `json:"file_key"`
	// NodeID may use the URL form 0-3; it is converted to 0:3. When empty,
	// the node-id of a file_key URL is used.
	NodeID string `json:"node_id"`
}

// ImagesArgs is the input of get_images.
type ImagesArgs struct {
	FileKey string   `json:"file_key"`
	NodeIDs []string `json:"node_ids"`
	Format  string   `json:"format,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
}

// fileToolSchema is shared by every tool taking only a file key.
func fileToolSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_key": {
				"type": "string",
				"description": ` + quote(fileKeyDescription) + `
			}
		},
		"required": ["file_key"]
	}`)
}

// nodeToolSchema returns the JSON schema for the get_node tool input.
func nodeToolSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_key": {
				"type": "string",
				"description": ` + quote(fileKeyDescription) + `
			},
			"node_id": {
				"type": "string",
				"description": "The ID of the node to retrieve in the format x:x. URLs show it as 0-3, which is accepted and converted to 0:3. Optional when file_key is a URL with a node-id parameter."
			}
		},
		"required": ["file_key"]
	}`)
}

// imagesToolSchema includes the format enum and scale bounds.
func imagesToolSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_key": {
				"type": "string",
				"description": ` + quote(fileKeyDescription) + `
			},
			"node_ids": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 1,
				"description": "IDs of the nodes to render"
			},
			"format": {
				"type": "string",
				"enum": ["png", "jpg", "svg", "pdf"],
				"description": "Image format (default png)"
			},
			"scale": {
				"type": "number",
				"minimum": 0.01,
				"maximum": 4,
				"description": "Scale factor for raster formats (default 1)"
			}
		},
		"required": ["file_key", "node_ids"]
	}`)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Tools holds the shared state of the tool handlers.
type Tools struct {
	client    FigmaAPI
	snapshots *snapshot.Store
	logger    *log.Logger
}

// NewTools creates the tool set.
func NewTools(client FigmaAPI, snapshots *snapshot.Store, logger *log.Logger) *Tools {
	return &Tools{
		client:    client,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Register adds every Figma tool to the MCP server.
func (t *Tools) Register(server *mcp.Server) {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}

	server.AddTool(&mcp.Tool{
		Name:        ToolGetComponents,
		Description: "Get components available in a Figma file",
		InputSchema: fileToolSchema(),
		Annotations: readOnly,
	}, t.handle(ToolGetComponents, t.handleGetComponents))

	server.AddTool(&mcp.Tool{
		Name:        ToolGetNode,
		Description: "Get a specific node from a Figma file as a simplified tree with a shared style table. Returns {} if the node does not exist.",
		InputSchema: nodeToolSchema(),
		Annotations: readOnly,
	}, t.handle(ToolGetNode, t.handleGetNode))

	server.AddTool(&mcp.Tool{
		Name:        ToolGetWorkflow,
		Description: "Get the prototype workflow of a Figma file: every transition from a source node to a target node",
		InputSchema: fileToolSchema(),
		Annotations: readOnly,
	}, t.handle(ToolGetWorkflow, t.handleGetWorkflow))

	server.AddTool(&mcp.Tool{
		Name:        ToolGetStyles,
		Description: "Get the named styles (fill, text, effect, grid) defined in a Figma file",
		InputSchema: fileToolSchema(),
		Annotations: readOnly,
	}, t.handle(ToolGetStyles, t.handleGetStyles))

	server.AddTool(&mcp.Tool{
		Name:        ToolGetImages,
		Description: "Render nodes of a Figma file and return temporary image URLs keyed by node id",
		InputSchema: imagesToolSchema(),
		Annotations: readOnly,
	}, t.handle(ToolGetImages, t.handleGetImages))

	server.AddTool(&mcp.Tool{
		Name:        ToolDownloadFile,
		Description: "Download the full JSON of a Figma file to <file_key>.json in the server's download directory",
		InputSchema: fileToolSchema(),
	}, t.handle(ToolDownloadFile, t.handleDownloadFile))
}

// handle wraps a handler with debug logging of the call and its duration.
func (t *Tools) handle(name string, h mcp.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := h(ctx, req)
		isError := err != nil || (result != nil && result.IsError)
		t.logger.Debug("tool call", "tool", name, "error", isError, "duration", time.Since(start))
		if isError && result != nil && len(result.Content) > 0 {
			if text, ok := result.Content[0].(*mcp.TextContent); ok {
				t.logger.Warn("tool failed", "tool", name, "reason", text.Text)
			}
		}
		return result, err
	}
}

// decodeArgs unmarshals the raw tool arguments into v.
func decodeArgs(req *mcp.CallToolRequest, v any) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("failed to parse arguments: %v", err)
	}
	return nil
}
