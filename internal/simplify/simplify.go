// Package simplify turns raw Figma document nodes into a compact tree
// with CSS-like styles pulled out into a shared, de-duplicated table.
//
// Agents get far fewer tokens for the same design: a button repeated a
// hundred times references one style entry instead of carrying its fills,
// paddings and typography a hundred times.
package simplify

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"figmamcp/internal/figma"
)

// Style is a flat CSS-like property bag.
type Style map[string]any

// Node is a simplified document node.
type Node struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Visible bool   `json:"visible"`

	FillStyleID   string `json:"fillStyleId,omitempty"`
	LayoutStyleID string `json:"layoutStyleId,omitempty"`
	TextStyleID   string `json:"textStyleId,omitempty"`

	Characters *string `json:"characters,omitempty"`
	ImageRef   string  `json:"imageRef,omitempty"`

	// Children is nil for leaves and empty when every child is hidden.
	Children []*Node `json:"children,omitzero"`

	ComponentPropertyReferences  json.RawMessage `json:"componentPropertyReferences,omitempty"`
	ComponentProperties          json.RawMessage `json:"componentProperties,omitempty"`
	ComponentPropertyDefinitions json.RawMessage `json:"componentPropertyDefinitions,omitempty"`
	VariantProperties            json.RawMessage `json:"variantProperties,omitempty"`
	ComponentSetID               string          `json:"componentSetId,omitempty"`
	ComponentID                  string          `json:"componentId,omitempty"`
}

// Result is a simplified tree together with the styles it references.
type Result struct {
	Document *Node            `json:"document"`
	Styles   map[string]Style `json:"styles"`
}

// Transform simplifies node and everything below it. Invisible children
// are dropped; the root is kept regardless of its visibility.
func Transform(node *figma.Node) Result {
	styles := map[string]Style{}
	return Result{
		Document: transformNode(node, styles),
		Styles:   styles,
	}
}

func transformNode(raw *figma.Node, styles map[string]Style) *Node {
	node := &Node{
		ID:      raw.ID,
		Name:    raw.Name,
		Type:    raw.Type,
		Visible: raw.IsVisible(),
	}

	node.FillStyleID = fillStyleID(raw.Fills, styles)
	node.LayoutStyleID = layoutStyleID(raw, styles)
	node.TextStyleID = textStyleID(raw, styles)

	if raw.Type == "TEXT" && raw.Characters != nil {
		node.Characters = raw.Characters
	}

	if raw.Type == "RECTANGLE" {
		for _, fill := range raw.Fills {
			if fill.Type == "IMAGE" && fill.ImageRef != "" {
				node.ImageRef = fill.ImageRef
			}
		}
	}

	if raw.Children != nil {
		node.Children = make([]*Node, 0, len(raw.Children))
		for _, child := range raw.Children {
			if child == nil || !child.IsVisible() {
				continue
			}
			node.Children = append(node.Children, transformNode(child, styles))
		}
	}

	node.ComponentPropertyReferences = raw.ComponentPropertyReferences
	node.ComponentProperties = raw.ComponentProperties
	node.ComponentPropertyDefinitions = raw.ComponentPropertyDefinitions
	node.VariantProperties = raw.VariantProperties
	node.ComponentSetID = raw.ComponentSetID
	node.ComponentID = raw.ComponentID

	return node
}

// fillStyleID registers the first visible SOLID fill.
func fillStyleID(fills []figma.Paint, styles map[string]Style) string {
	if len(fills) == 0 || !fills[0].IsVisible() {
		return ""
	}
	fill := fills[0]
	if fill.Type != "SOLID" || fill.Color == nil {
		return ""
	}

	opacity := 1.0
	if fill.Opacity != nil {
		opacity = *fill.Opacity
	}
	return register(styles, Style{
		"backgroundColor": HexColor(*fill.Color),
		"opacity":         opacity,
	})
}

func layoutStyleID(raw *figma.Node, styles map[string]Style) string {
	style := Style{}

	if raw.LayoutMode != "" {
		switch raw.LayoutMode {
		case "HORIZONTAL":
			style["display"] = "flex"
			style["flexDirection"] = "row"
		case "VERTICAL":
			style["display"] = "flex"
			style["flexDirection"] = "column"
		}

		setPx(style, "paddingLeft", raw.PaddingLeft)
		setPx(style, "paddingRight", raw.PaddingRight)
		setPx(style, "paddingTop", raw.PaddingTop)
		setPx(style, "paddingBottom", raw.PaddingBottom)
		setPx(style, "gap", raw.ItemSpacing)

		if raw.PrimaryAxisAlignItems != "" {
			counter := raw.CounterAxisAlignItems
			if counter == "" {
				counter = "MIN"
			}
			style["justifyContent"] = FlexAlign(raw.PrimaryAxisAlignItems)
			style["alignItems"] = FlexAlign(counter)
		}
	}

	if box := raw.AbsoluteBoundingBox; box != nil {
		style["width"] = Px(box.Width)
		style["height"] = Px(box.Height)
	}

	setPx(style, "borderRadius", raw.CornerRadius)
	if raw.CornerSmoothing != nil && *raw.CornerSmoothing > 0 {
		style["cornerSmoothing"] = *raw.CornerSmoothing
	}

	if len(style) == 0 {
		return ""
	}
	return register(styles, style)
}

var textAlign = map[string]string{
	"LEFT":      "left",
	"CENTER":    "center",
	"RIGHT":     "right",
	"JUSTIFIED": "justify",
}

func textStyleID(raw *figma.Node, styles map[string]Style) string {
	if raw.Type != "TEXT" || raw.Style == nil {
		return ""
	}
	ts := raw.Style
	style := Style{}

	if ts.FontFamily != nil {
		style["fontFamily"] = *ts.FontFamily
	}
	if ts.FontWeight != nil {
		style["fontWeight"] = *ts.FontWeight
	}
	setPx(style, "fontSize", ts.FontSize)
	setPx(style, "lineHeight", ts.LineHeightPx)
	setPx(style, "letterSpacing", ts.LetterSpacing)
	if ts.TextAlignHorizontal != nil {
		align, ok := textAlign[*ts.TextAlignHorizontal]
		if !ok {
			align = "left"
		}
		style["textAlign"] = align
	}

	if len(raw.Fills) > 0 && raw.Fills[0].Type == "SOLID" && raw.Fills[0].Color != nil {
		style["color"] = HexColor(*raw.Fills[0].Color)
	}

	if len(style) == 0 {
		return ""
	}
	return register(styles, style)
}

// register stores style under its hash and returns the hash.
func register(styles map[string]Style, style Style) string {
	id := StyleID(style)
	if _, ok := styles[id]; !ok {
		styles[id] = style
	}
	return id
}

// StyleID is the hex MD5 of the style's JSON encoding. encoding/json
// sorts map keys, so equal styles always hash equally.
func StyleID(style Style) string {
	data, err := json.Marshal(style)
	if err != nil {
		// Styles only ever hold strings and float64s.
		panic(fmt.Sprintf("simplify: unencodable style: %v", err))
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// HexColor renders a colour as #rrggbb, truncating each channel and
// ignoring alpha.
func HexColor(c figma.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	n := int(v * 255)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

// FlexAlign maps a Figma axis alignment onto a CSS flex value.
func FlexAlign(v string) string {
	switch v {
	case "CENTER":
		return "center"
	case "MAX":
		return "flex-end"
	case "SPACE_BETWEEN":
		return "space-between"
	default:
		return "flex-start"
	}
}

// Px formats a length using the shortest exact decimal form.
func Px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func setPx(style Style, key string, v *float64) {
	if v != nil {
		style[key] = Px(*v)
	}
}
