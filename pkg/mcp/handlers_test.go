package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnana997/stylebind/pkg/bridge"
	"github.com/gnana997/stylebind/pkg/convert"
	"github.com/gnana997/stylebind/pkg/document"
	"github.com/gnana997/stylebind/pkg/mcplog"
	"github.com/gnana997/stylebind/pkg/naming"
	"github.com/gnana997/stylebind/pkg/styles"
	"github.com/gnana997/stylebind/pkg/variables"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDoc = `{
  "name": "App",
  "styles": [
    {"id": "S:1", "name": "M3/sys/light/primary", "type": "PAINT"},
    {"id": "S:2", "name": "M3/sys/light/outline", "type": "PAINT"},
    {"id": "S:3", "name": "M3/sys/light/tertiary", "type": "PAINT"},
    {"id": "S:4", "name": "Brand/Accent", "type": "PAINT"}
  ],
  "variables": [
    {"id": "V:1", "name": "Schemes/Primary", "resolvedType": "COLOR"},
    {"id": "V:2", "name": "Schemes/Outline", "resolvedType": "COLOR"},
    {"id": "V:3", "name": "Schemes/Primary Container", "resolvedType": "COLOR"},
    {"id": "V:4", "name": "Spacing/Small", "resolvedType": "FLOAT"}
  ],
  "pages": [
    {"id": "0:1", "name": "Page 1", "type": "PAGE", "children": [
      {"id": "1:1", "name": "Card", "type": "FRAME", "fillStyleId": "S:1", "strokeStyleId": "S:2",
       "fills": [{"type": "SOLID", "color": {"r": 1, "g": 1, "b": 1, "a": 1}}],
       "strokes": [{"type": "SOLID", "color": {"r": 0, "g": 0, "b": 0, "a": 1}}],
       "children": [
        {"id": "1:2", "name": "Badge", "type": "ELLIPSE", "fillStyleId": "S:3",
         "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0, "a": 1}}]}
      ]},
      {"id": "1:3", "name": "Button", "type": "RECTANGLE", "fillStyleId": "S:4",
       "fills": [{"type": "SOLID", "color": {"r": 0, "g": 0, "b": 1, "a": 1}}]}
    ]}
  ],
  "selection": ["1:1"]
}`

// --- helpers ---

func testServerAt(t *testing.T, path string, logger *mcplog.Logger) (*Server, *document.Session) {
	t.Helper()
	sess, err := document.Open(path, nil)
	require.NoError(t, err)

	styleCache := styles.NewCache(sess, 0, nil)
	vars := variables.NewCache(sess, naming.Default, nil)
	conv := convert.NewConverter(styleCache, vars, naming.Default, nil)
	b := bridge.New(sess, conv, &bridge.Recorder{}, bridge.Options{}, nil)

	return NewServer(Deps{
		Session:    sess,
		Bridge:     b,
		Converter:  conv,
		Variables:  vars,
		Convention: naming.Default,
	}, logger), sess
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0644))
	return path
}

func testServer(t *testing.T) (*Server, *document.Session) {
	t.Helper()
	return testServerAt(t, writeDoc(t), nil)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "check_selection":
		handler = s.handleCheckSelection
	case "convert":
		handler = s.handleConvert
	case "preview_conversion":
		handler = s.handlePreviewConversion
	case "select":
		handler = s.handleSelect
	case "map_style_name":
		handler = s.handleMapStyleName
	case "list_variables":
		handler = s.handleListVariables
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- check_selection ---

func TestHandleCheckSelection(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("check_selection", nil))
	assert.False(t, result.IsError)

	var update bridge.SelectionUpdate
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &update))
	assert.Equal(t, bridge.TypeSelectionUpdate, update.Type)
	assert.Equal(t, 3, update.Count)
	assert.True(t, update.HasSelection)
}

func TestHandleCheckSelection_Empty(t *testing.T) {
	s, sess := testServer(t)
	require.NoError(t, sess.Select(nil))

	result := callTool(t, s, makeRequest("check_selection", nil))
	var update bridge.SelectionUpdate
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &update))
	assert.Equal(t, 0, update.Count)
	assert.False(t, update.HasSelection)
}

// --- convert ---

func TestHandleConvert(t *testing.T) {
	s, sess := testServer(t)
	result := callTool(t, s, makeRequest("convert", nil))
	assert.False(t, result.IsError)

	var resp convertResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, 2, resp.Converted)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, []string{"Variable not found: Schemes/Tertiary"}, resp.Errors)
	assert.Empty(t, resp.Saved)
	assert.True(t, sess.Dirty())

	notes := sess.Notifications()
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Error)
}

func TestHandleConvert_Save(t *testing.T) {
	path := writeDoc(t)
	s, sess := testServerAt(t, path, nil)

	result := callTool(t, s, makeRequest("convert", map[string]any{"save": true}))
	assert.False(t, result.IsError)

	var resp convertResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, path, resp.Saved)
	assert.False(t, sess.Dirty())

	doc, err := document.Load(path)
	require.NoError(t, err)
	card := doc.Pages[0].Children[0]
	require.Len(t, card.Fills, 1)
	assert.Equal(t, "V:1", card.Fills[0].BoundVariables["color"].ID)
	assert.Equal(t, "V:2", card.Strokes[0].BoundVariables["color"].ID)
}

func TestHandleConvert_EmptySelection(t *testing.T) {
	s, sess := testServer(t)
	require.NoError(t, sess.Select(nil))

	result := callTool(t, s, makeRequest("convert", nil))
	assert.True(t, result.IsError)
	assert.Equal(t, bridge.EmptySelectionMessage, resultJSON(t, result))
	assert.Empty(t, sess.Notifications())
}

// --- preview_conversion ---

func TestHandlePreviewConversion(t *testing.T) {
	s, sess := testServer(t)
	result := callTool(t, s, makeRequest("preview_conversion", nil))
	assert.False(t, result.IsError)

	var res convert.Result
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &res))
	assert.Equal(t, 2, res.Converted)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Bindings, 2)
	assert.Equal(t, "1:1", res.Bindings[0].NodeID)
	assert.Equal(t, convert.ChannelFill, res.Bindings[0].Channel)
	assert.Equal(t, "Schemes/Primary", res.Bindings[0].Variable)
	assert.Equal(t, convert.ChannelStroke, res.Bindings[1].Channel)

	assert.False(t, sess.Dirty())
	assert.Empty(t, sess.Notifications())
}

// --- select ---

func TestHandleSelect_ByIDs(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("select", map[string]any{
		"node_ids": []any{"1:2", "1:3"},
	}))
	assert.False(t, result.IsError)

	var resp selectResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, []string{"1:2", "1:3"}, resp.Selected)
	// Badge's style is convertible, Button's Brand/Accent is not.
	assert.Equal(t, 1, resp.Count)
	assert.True(t, resp.HasSelection)
}

func TestHandleSelect_ByPattern(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("select", map[string]any{
		"pattern": "Page 1/Card/*",
	}))
	assert.False(t, result.IsError)

	var resp selectResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, []string{"1:2"}, resp.Selected)
	assert.Equal(t, 1, resp.Count)
}

func TestHandleSelect_UnknownNode(t *testing.T) {
	s, sess := testServer(t)
	result := callTool(t, s, makeRequest("select", map[string]any{
		"node_ids": []any{"9:9"},
	}))
	assert.True(t, result.IsError)
	assert.Equal(t, []string{"1:1"}, sess.SelectionIDs())
}

func TestHandleSelect_MissingArgs(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("select", nil))
	assert.True(t, result.IsError)
}

// --- map_style_name ---

func TestHandleMapStyleName(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("map_style_name", map[string]any{
		"style_name": "M3/sys/light/primary-container",
	}))
	assert.False(t, result.IsError)

	var resp mapStyleNameResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.True(t, resp.Convertible)
	assert.Equal(t, "Schemes/Primary Container", resp.VariableName)
	assert.True(t, resp.Exists)
	assert.Equal(t, "V:3", resp.VariableID)
}

func TestHandleMapStyleName_MissingVariable(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("map_style_name", map[string]any{
		"style_name": "M3/sys/light/on-surface-variant",
	}))

	var resp mapStyleNameResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.True(t, resp.Convertible)
	assert.Equal(t, "Schemes/On Surface Variant", resp.VariableName)
	assert.False(t, resp.Exists)
}

func TestHandleMapStyleName_NotConvertible(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("map_style_name", map[string]any{
		"style_name": "Brand/Accent",
	}))

	var resp mapStyleNameResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.False(t, resp.Convertible)
	assert.Empty(t, resp.VariableName)
}

func TestHandleMapStyleName_Required(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("map_style_name", nil))
	assert.True(t, result.IsError)
}

// --- list_variables ---

func TestHandleListVariables(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("list_variables", nil))
	assert.False(t, result.IsError)

	var resp listVariablesResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Variables, 3)
	assert.Equal(t, "Schemes/Outline", resp.Variables[0].Name)
	assert.Equal(t, "Schemes/Primary", resp.Variables[1].Name)
	assert.Equal(t, "Schemes/Primary Container", resp.Variables[2].Name)
}

// --- middleware ---

func TestLoggingMiddleware(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.jsonl")
	logger, err := mcplog.NewLogger(logPath)
	require.NoError(t, err)

	s, _ := testServerAt(t, writeDoc(t), logger)
	handler := s.loggingMiddleware()(s.handleMapStyleName)
	_, err = handler(context.Background(), makeRequest("map_style_name", map[string]any{
		"style_name": "M3/sys/light/primary",
	}))
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry mcplog.LogEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "map_style_name", entry.Tool)
	assert.Equal(t, logger.Session(), entry.Session)
	assert.Equal(t, "M3/sys/light/primary", entry.Params["style_name"])
	assert.False(t, entry.IsError)
	assert.Nil(t, entry.Error)
	assert.Positive(t, entry.ResponseBytes)
}

func TestHandleConvert_SaveSkippedWithoutConversion(t *testing.T) {
	path := writeDoc(t)
	s, sess := testServerAt(t, path, nil)
	require.NoError(t, sess.Select(nil))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	result := callTool(t, s, makeRequest("convert", map[string]any{"save": true}))
	assert.True(t, result.IsError)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
