package figma

import "encoding/json"

// File is the subset of GET /v1/files/{key} this server reads.
type File struct {
	Name          string                  `json:"name"`
	LastModified  string                  `json:"lastModified,omitempty"`
	Version       string                  `json:"version,omitempty"`
	Document      *Node                   `json:"document,omitempty"`
	Components    map[string]Component    `json:"components,omitempty"`
	ComponentSets map[string]ComponentSet `json:"componentSets,omitempty"`
	Styles        map[string]Style        `json:"styles,omitempty"`
}

// Component is a published or local component entry of a file.
type Component struct {
	Key            string `json:"key,omitempty"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	ComponentSetID string `json:"componentSetId,omitempty"`
}

// ComponentSet groups component variants.
type ComponentSet struct {
	Key         string `json:"key,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Style is a style entry of a file (FILL, TEXT, EFFECT or GRID).
type Style struct {
	Key         string `json:"key,omitempty"`
	Name        string `json:"name,omitempty"`
	StyleType   string `json:"styleType,omitempty"`
	Description string `json:"description,omitempty"`
}

// Node is a document node. Optional numeric fields are pointers so that
// "absent" and "zero" stay distinguishable.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Visible  *bool   `json:"visible,omitempty"`
	Children []*Node `json:"children,omitempty"`

	Fills      []Paint    `json:"fills,omitempty"`
	Style      *TypeStyle `json:"style,omitempty"`
	Characters *string    `json:"characters,omitempty"`

	LayoutMode            string   `json:"layoutMode,omitempty"`
	PaddingLeft           *float64 `json:"paddingLeft,omitempty"`
	PaddingRight          *float64 `json:"paddingRight,omitempty"`
	PaddingTop            *float64 `json:"paddingTop,omitempty"`
	PaddingBottom         *float64 `json:"paddingBottom,omitempty"`
	ItemSpacing           *float64 `json:"itemSpacing,omitempty"`
	PrimaryAxisAlignItems string   `json:"primaryAxisAlignItems,omitempty"`
	CounterAxisAlignItems string   `json:"counterAxisAlignItems,omitempty"`
	AbsoluteBoundingBox   *Rect    `json:"absoluteBoundingBox,omitempty"`
	CornerRadius          *float64 `json:"cornerRadius,omitempty"`
	CornerSmoothing       *float64 `json:"cornerSmoothing,omitempty"`

	TransitionNodeID   string   `json:"transitionNodeID,omitempty"`
	TransitionDuration *float64 `json:"transitionDuration,omitempty"`

	ComponentPropertyReferences  json.RawMessage `json:"componentPropertyReferences,omitempty"`
	ComponentProperties          json.RawMessage `json:"componentProperties,omitempty"`
	ComponentPropertyDefinitions json.RawMessage `json:"componentPropertyDefinitions,omitempty"`
	VariantProperties            json.RawMessage `json:"variantProperties,omitempty"`
	ComponentSetID               string          `json:"componentSetId,omitempty"`
	ComponentID                  string          `json:"componentId,omitempty"`
}

// IsVisible reports the node's visibility; absent means visible.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// Paint is a fill or stroke.
type Paint struct {
	Type     string   `json:"type"`
	Visible  *bool    `json:"visible,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Color    *Color   `json:"color,omitempty"`
	ImageRef string   `json:"imageRef,omitempty"`
}

// IsVisible reports the paint's visibility; absent means visible.
func (p Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// Color channels are in the 0..1 range.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// TypeStyle holds text properties of a TEXT node.
type TypeStyle struct {
	FontFamily          *string  `json:"fontFamily,omitempty"`
	FontWeight          *float64 `json:"fontWeight,omitempty"`
	FontSize            *float64 `json:"fontSize,omitempty"`
	LineHeightPx        *float64 `json:"lineHeightPx,omitempty"`
	LetterSpacing       *float64 `json:"letterSpacing,omitempty"`
	TextAlignHorizontal *string  `json:"textAlignHorizontal,omitempty"`
}

// Rect is an absolute bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodesResponse is the body of GET /v1/files/{key}/nodes.
type NodesResponse struct {
	Name  string                `json:"name,omitempty"`
	Nodes map[string]*NodeEntry `json:"nodes"`
}

// NodeEntry is one requested node; Figma returns null for unknown ids.
type NodeEntry struct {
	Document   *Node                `json:"document,omitempty"`
	Components map[string]Component `json:"components,omitempty"`
	Styles     map[string]Style     `json:"styles,omitempty"`
}

// ImagesResponse is the body of GET /v1/images/{key}. A nil URL means
// rendering failed for that node.
type ImagesResponse struct {
	Err    *string            `json:"err"`
	Images map[string]*string `json:"images"`
}

// Connection is a prototype transition between two nodes.
type Connection struct {
	SourceNodeID   string  `json:"sourceNodeID"`
	SourceNodeName string  `json:"sourceNodeName"`
	TargetNodeID   string  `json:"targetNodeID"`
	Interaction    float64 `json:"interaction"`
}
