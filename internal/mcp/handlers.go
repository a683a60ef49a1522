package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"figmamcp/internal/figma"
	"figmamcp/internal/simplify"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ComponentInfo is one entry of the get_components response.
type ComponentInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StyleInfo is one entry of the get_styles response.
type StyleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StyleType   string `json:"styleType"`
	Description string `json:"description"`
}

// ImagesResponse maps node ids to render URLs. A null URL means Figma
// could not render that node.
type ImagesResponse struct {
	Images map[string]*string `json:"images"`
}

// DownloadResponse describes a saved snapshot.
type DownloadResponse struct {
	FileKey string `json:"file_key"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
}

// resolveFileKey accepts a bare key or a Figma URL.
func resolveFileKey(input string) (string, string, error) {
	if strings.TrimSpace(input) == "" {
		return "", "", errors.New("file_key is required")
	}
	key, nodeID, err := figma.ParseFileKey(input)
	if err != nil {
		return "", "", fmt.Errorf("invalid file_key %q: expected a Figma file key or URL", input)
	}
	return key, nodeID, nil
}

// doGetComponents lists the file's components sorted by name, then id.
func (t *Tools) doGetComponents(ctx context.Context, args FileArgs) (any, error) {
	fileKey, _, err := resolveFileKey(args.FileKey)
	if err != nil {
		return nil, err
	}

	file, err := t.client.GetFile(ctx, fileKey)
	if err != nil {
		return nil, err
	}

	components := make([]ComponentInfo, 0, len(file.Components))
	for id, c := range file.Components {
		name := c.Name
		if name == "" {
			name = "Unnamed Component"
		}
		components = append(components, ComponentInfo{ID: id, Name: name, Description: c.Description})
	}
	sort.Slice(components, func(i, j int) bool {
		if components[i].Name != components[j].Name {
			return components[i].Name < components[j].Name
		}
		return components[i].ID < components[j].ID
	})
	return components, nil
}

func (t *Tools) handleGetComponents(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args FileArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	return respond(t.doGetComponents(ctx, args))
}

// doGetNode fetches one node and simplifies it. An unknown node yields an
// empty object rather than an error.
func (t *Tools) doGetNode(ctx context.Context, args NodeArgs) (any, error) {
	fileKey, urlNodeID, err := resolveFileKey(args.FileKey)
	if err != nil {
		return nil, err
	}

	nodeID := strings.TrimSpace(args.NodeID)
	if nodeID == "" {
		nodeID = urlNodeID
	}
	if nodeID == "" {
		return nil, errors.New("node_id is required")
	}
	nodeID = figma.NormalizeNodeID(nodeID)

	resp, err := t.client.GetNodes(ctx, fileKey, []string{nodeID})
	if err != nil {
		return nil, err
	}

	node := figma.FindInNodes(resp, nodeID)
	if node == nil {
		return struct{}{}, nil
	}
	return simplify.Transform(node), nil
}

func (t *Tools) handleGetNode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args NodeArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	return respond(t.doGetNode(ctx, args))
}

// doGetWorkflow returns the prototype connections of a file.
func (t *Tools) doGetWorkflow(ctx context.Context, args FileArgs) (any, error) {
	fileKey, _, err := resolveFileKey(args.FileKey)
	if err != nil {
		return nil, err
	}

	file, err := t.client.GetFile(ctx, fileKey)
	if err != nil {
		return nil, err
	}
	return figma.ExtractConnections(file), nil
}

func (t *Tools) handleGetWorkflow(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args FileArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	return respond(t.doGetWorkflow(ctx, args))
}

// doGetStyles lists the file's named styles sorted by type, then name.
func (t *Tools) doGetStyles(ctx context.Context, args FileArgs) (any, error) {
	fileKey, _, err := resolveFileKey(args.FileKey)
	if err != nil {
		return nil, err
	}

	file, err := t.client.GetFile(ctx, fileKey)
	if err != nil {
		return nil, err
	}

	styles := make([]StyleInfo, 0, len(file.Styles))
	for id, s := range file.Styles {
		styles = append(styles, StyleInfo{ID: id, Name: s.Name, StyleType: s.StyleType, Description: s.Description})
	}
	sort.Slice(styles, func(i, j int) bool {
		if styles[i].StyleType != styles[j].StyleType {
			return styles[i].StyleType < styles[j].StyleType
		}
		if styles[i].Name != styles[j].Name {
			return styles[i].Name < styles[j].Name
		}
		return styles[i].ID < styles[j].ID
	})
	return styles, nil
}

func (t *Tools) handleGetStyles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args FileArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	return respond(t.doGetStyles(ctx, args))
}

// doGetImages renders nodes and returns their URLs.
func (t *Tools) doGetImages(ctx context.Context, args ImagesArgs) (any, error) {
	fileKey, urlNodeID, err := resolveFileKey(args.FileKey)
	if err != nil {
		return nil, err
	}

	ids := args.NodeIDs
	if len(ids) == 0 && urlNodeID != "" {
		ids = []string{urlNodeID}
	}
	if len(ids) == 0 {
		return nil, errors.New("node_ids is required")
	}

	resp, err := t.client.GetImages(ctx, fileKey, ids, figma.ImageOptions{Format: args.Format, Scale: args.Scale})
	if err != nil {
		return nil, err
	}
	images := resp.Images
	if images == nil {
		images = map[string]*string{}
	}
	return ImagesResponse{Images: images}, nil
}

func (t *Tools) handleGetImages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ImagesArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	return respond(t.doGetImages(ctx, args))
}

// doDownloadFile saves the raw file JSON into the snapshot directory.
func (t *Tools) doDownloadFile(ctx context.Context, args FileArgs) (any, error) {
	fileKey, _, err := resolveFileKey(args.FileKey)
	if err != nil {
		return nil, err
	}

	raw, err := t.client.GetFileRaw(ctx, fileKey)
	if err != nil {
		return nil, err
	}

	res, err := t.snapshots.Save(fileKey, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	t.logger.Info("saved Figma file", "file_key", fileKey, "path", res.Path, "bytes", res.Bytes)

	return DownloadResponse{FileKey: fileKey, Path: res.Path, Bytes: res.Bytes}, nil
}

func (t *Tools) handleDownloadFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args FileArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	return respond(t.doDownloadFile(ctx, args))
}

// respond encodes a do* outcome as MCP content: JSON text on success, an
// error result otherwise. Tool failures are never protocol errors.
func respond(response any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}

	jsonBytes, err := json.Marshal(response)
	if err != nil {
		return errorResult(fmt.Errorf("failed to encode response: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}

// errorResult renders err for the agent. Figma API failures keep their
// short "Failed to fetch Figma file: 403" form, with Figma's own message
// appended when there is one.
func errorResult(err error) *mcp.CallToolResult {
	msg := err.Error()
	var apiErr *figma.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Detail()
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
