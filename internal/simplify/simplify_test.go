package simplify

import (
	"encoding/json"
	"testing"

	"figmamcp/internal/figma"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeNode(t *testing.T, raw string) *figma.Node {
	t.Helper()
	var n figma.Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	return &n
}

const cardJSON = `{
	"id": "1:1", "name": "Card", "type": "FRAME",
	"layoutMode": "VERTICAL",
	"paddingLeft": 16, "paddingRight": 16, "paddingTop": 8, "paddingBottom": 8.5,
	"itemSpacing": 12,
	"primaryAxisAlignItems": "SPACE_BETWEEN",
	"absoluteBoundingBox": {"x": 0, "y": 0, "width": 320, "height": 200},
	"cornerRadius": 8,
	"fills": [{"type": "SOLID", "color": {"r": 1, "g": 0.5, "b": 0, "a": 1}, "opacity": 0.8}],
	"children": [
		{"id": "1:2", "name": "Title", "type": "TEXT", "characters": "Hello",
		 "style": {"fontFamily": "Inter", "fontWeight": 700, "fontSize": 24, "lineHeightPx": 29.05, "letterSpacing": 0, "textAlignHorizontal": "CENTER"},
		 "fills": [{"type": "SOLID", "color": {"r": 0, "g": 0, "b": 0, "a": 1}}]},
		{"id": "1:3", "name": "Hidden", "type": "TEXT", "visible": false, "characters": "secret"},
		{"id": "1:4", "name": "Photo", "type": "RECTANGLE",
		 "fills": [{"type": "IMAGE", "imageRef": "abc"}, {"type": "IMAGE", "imageRef": "def"}]},
		{"id": "1:5", "name": "Twin", "type": "FRAME",
		 "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0.5, "b": 0, "a": 1}, "opacity": 0.8}]},
		{"id": "1:6", "name": "Instance", "type": "INSTANCE", "componentId": "9:9",
		 "componentProperties": {"Label": {"type": "TEXT", "value": "OK"}}}
	]
}`

func TestTransform_Card(t *testing.T) {
	res := Transform(decodeNode(t, cardJSON))
	doc := res.Document

	assert.Equal(t, "1:1", doc.ID)
	assert.True(t, doc.Visible)
	require.NotEmpty(t, doc.FillStyleID)
	require.NotEmpty(t, doc.LayoutStyleID)
	assert.Empty(t, doc.TextStyleID)

	assert.Equal(t, Style{"backgroundColor": "#ff7f00", "opacity": 0.8}, res.Styles[doc.FillStyleID])
	assert.Equal(t, Style{
		"display":        "flex",
		"flexDirection":  "column",
		"paddingLeft":    "16px",
		"paddingRight":   "16px",
		"paddingTop":     "8px",
		"paddingBottom":  "8.5px",
		"gap":            "12px",
		"justifyContent": "space-between",
		"alignItems":     "flex-start",
		"width":          "320px",
		"height":         "200px",
		"borderRadius":   "8px",
	}, res.Styles[doc.LayoutStyleID])

	// Hidden child dropped.
	require.Len(t, doc.Children, 4)
	ids := []string{}
	for _, c := range doc.Children {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"1:2", "1:4", "1:5", "1:6"}, ids)

	title := doc.Children[0]
	require.NotNil(t, title.Characters)
	assert.Equal(t, "Hello", *title.Characters)
	assert.Equal(t, Style{
		"fontFamily":    "Inter",
		"fontWeight":    700.0,
		"fontSize":      "24px",
		"lineHeight":    "29.05px",
		"letterSpacing": "0px",
		"textAlign":     "center",
		"color":         "#000000",
	}, res.Styles[title.TextStyleID])

	assert.Equal(t, "def", doc.Children[1].ImageRef, "last image fill wins")

	// Identical fills share one entry.
	assert.Equal(t, doc.FillStyleID, doc.Children[2].FillStyleID)

	inst := doc.Children[3]
	assert.Equal(t, "9:9", inst.ComponentID)
	assert.JSONEq(t, `{"Label": {"type": "TEXT", "value": "OK"}}`, string(inst.ComponentProperties))
}

func TestTransform_StyleTableCount(t *testing.T) {
	res := Transform(decodeNode(t, cardJSON))
	// card fill (shared with twin), card layout, title text, title fill.
	assert.Len(t, res.Styles, 4)
}

func TestTransform_InvisibleFirstFill(t *testing.T) {
	node := decodeNode(t, `{"id":"1","name":"n","type":"FRAME","fills":[{"type":"SOLID","visible":false,"color":{"r":1,"g":1,"b":1}}]}`)
	res := Transform(node)
	assert.Empty(t, res.Document.FillStyleID)
	assert.Empty(t, res.Styles)
}

func TestTransform_NonSolidFill(t *testing.T) {
	node := decodeNode(t, `{"id":"1","name":"n","type":"FRAME","fills":[{"type":"GRADIENT_LINEAR"}]}`)
	assert.Empty(t, Transform(node).Document.FillStyleID)
}

func TestTransform_HiddenRootKept(t *testing.T) {
	node := decodeNode(t, `{"id":"1","name":"n","type":"FRAME","visible":false}`)
	res := Transform(node)
	require.NotNil(t, res.Document)
	assert.False(t, res.Document.Visible)
	assert.Nil(t, res.Document.Children)
}

func TestTransform_ChildrenKeyKept(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "all children hidden",
			raw:  `{"id":"1:1","name":"Frame","type":"FRAME","children":[{"id":"1:2","name":"x","type":"RECTANGLE","visible":false}]}`,
			want: `{"document":{"id":"1:1","name":"Frame","type":"FRAME","visible":true,"children":[]},"styles":{}}`,
		},
		{
			name: "empty children",
			raw:  `{"id":"1:1","name":"Frame","type":"FRAME","children":[]}`,
			want: `{"document":{"id":"1:1","name":"Frame","type":"FRAME","visible":true,"children":[]},"styles":{}}`,
		},
		{
			name: "leaf",
			raw:  `{"id":"1:1","name":"Dot","type":"ELLIPSE"}`,
			want: `{"document":{"id":"1:1","name":"Dot","type":"ELLIPSE","visible":true},"styles":{}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(Transform(decodeNode(t, tt.raw)))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestTransform_CornerSmoothing(t *testing.T) {
	node := decodeNode(t, `{"id":"1","name":"n","type":"FRAME","cornerRadius":12,"cornerSmoothing":0.6}`)
	res := Transform(node)
	assert.Equal(t, Style{"borderRadius": "12px", "cornerSmoothing": 0.6}, res.Styles[res.Document.LayoutStyleID])

	flat := decodeNode(t, `{"id":"1","name":"n","type":"FRAME","cornerSmoothing":0}`)
	assert.Empty(t, Transform(flat).Document.LayoutStyleID)
}

func TestTransform_LayoutNoneKeepsPadding(t *testing.T) {
	node := decodeNode(t, `{"id":"1","name":"n","type":"FRAME","layoutMode":"NONE","paddingTop":4}`)
	res := Transform(node)
	assert.Equal(t, Style{"paddingTop": "4px"}, res.Styles[res.Document.LayoutStyleID])
}

func TestTransform_TextAlignDefault(t *testing.T) {
	node := decodeNode(t, `{"id":"1","name":"t","type":"TEXT","style":{"textAlignHorizontal":"DIAGONAL"}}`)
	res := Transform(node)
	assert.Equal(t, Style{"textAlign": "left"}, res.Styles[res.Document.TextStyleID])
}

func TestTransform_CharactersOnlyForText(t *testing.T) {
	node := decodeNode(t, `{"id":"1","name":"r","type":"FRAME","characters":"nope"}`)
	assert.Nil(t, Transform(node).Document.Characters)
}

func TestStyleID_Stable(t *testing.T) {
	a := Style{"b": "1px", "a": 2.0}
	b := Style{"a": 2.0, "b": "1px"}
	assert.Equal(t, StyleID(a), StyleID(b))
	assert.Len(t, StyleID(a), 32)
	assert.NotEqual(t, StyleID(a), StyleID(Style{"a": 3.0, "b": "1px"}))
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in   figma.Color
		want string
	}{
		{figma.Color{R: 1, G: 1, B: 1}, "#ffffff"},
		{figma.Color{}, "#000000"},
		{figma.Color{R: 0.5, G: 0.25, B: 0.1}, "#7f3f19"},
		{figma.Color{R: 1.2, G: -0.1, B: 0}, "#ff0000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HexColor(tt.in))
	}
}

func TestFlexAlign(t *testing.T) {
	assert.Equal(t, "flex-start", FlexAlign("MIN"))
	assert.Equal(t, "center", FlexAlign("CENTER"))
	assert.Equal(t, "flex-end", FlexAlign("MAX"))
	assert.Equal(t, "space-between", FlexAlign("SPACE_BETWEEN"))
	assert.Equal(t, "flex-start", FlexAlign("BASELINE"))
}

func TestPx(t *testing.T) {
	assert.Equal(t, "16px", Px(16))
	assert.Equal(t, "0.5px", Px(0.5))
	assert.Equal(t, "-2px", Px(-2))
}
