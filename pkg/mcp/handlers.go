package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gnana997/stylebind/pkg/bridge"
	"github.com/gnana997/stylebind/pkg/convert"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- response types ---

type selectResponse struct {
	Selected []string `json:"selected"`
	bridge.SelectionUpdate
}

type convertResponse struct {
	bridge.ConversionComplete
	Saved string `json:"saved,omitempty"`
}

type mapStyleNameResponse struct {
	StyleName    string `json:"style_name"`
	Convertible  bool   `json:"convertible"`
	VariableName string `json:"variable_name,omitempty"`
	VariableID   string `json:"variable_id,omitempty"`
	Exists       bool   `json:"exists"`
}

type variableEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listVariablesResponse struct {
	Variables []variableEntry `json:"variables"`
	Total     int             `json:"total"`
}

// --- handlers ---

func (s *Server) handleCheckSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := s.roundTrip(ctx, bridge.TypeCheckSelection)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(msg)
}

func (s *Server) handleConvert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var saved string
	save := func(reply any) error {
		if _, ok := reply.(bridge.ConversionComplete); !ok || !req.GetBool("save", false) {
			return nil
		}
		if err := s.deps.Session.SaveFile(""); err != nil {
			return fmt.Errorf("converted but failed to save: %w", err)
		}
		saved = s.deps.Session.Path()
		return nil
	}

	msg, err := s.roundTripThen(ctx, bridge.TypeConvert, save)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch m := msg.(type) {
	case bridge.ErrorMessage:
		return mcp.NewToolResultError(m.Message), nil
	case bridge.ConversionComplete:
		return jsonResult(convertResponse{ConversionComplete: m, Saved: saved})
	default:
		return jsonResult(msg)
	}
}

func (s *Server) handlePreviewConversion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodes, err := s.deps.Session.Selection(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(nodes) == 0 {
		return mcp.NewToolResultError(bridge.EmptySelectionMessage), nil
	}
	res, err := s.deps.Converter.Convert(ctx, nodes, convert.Options{DryRun: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := req.GetStringSlice("node_ids", nil)
	pattern := req.GetString("pattern", "")

	switch {
	case len(ids) > 0:
		if err := s.deps.Session.Select(ids); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	case pattern != "":
		if _, err := s.deps.Session.SelectPattern(pattern); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	default:
		return mcp.NewToolResultError("node_ids or pattern is required"), nil
	}

	msg, err := s.roundTrip(ctx, bridge.TypeCheckSelection)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	update, _ := msg.(bridge.SelectionUpdate)
	return jsonResult(selectResponse{
		Selected:        s.deps.Session.SelectionIDs(),
		SelectionUpdate: update,
	})
}

func (s *Server) handleMapStyleName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("style_name")
	if err != nil {
		return mcp.NewToolResultError("style_name is required"), nil
	}

	resp := mapStyleNameResponse{StyleName: name}
	if !s.deps.Convention.Matches(name) {
		return jsonResult(resp)
	}
	resp.Convertible = true
	resp.VariableName = s.deps.Convention.VariableName(name)

	v, ok, err := s.deps.Variables.Lookup(ctx, resp.VariableName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		resp.Exists = true
		resp.VariableID = v.ID
	}
	return jsonResult(resp)
}

func (s *Server) handleListVariables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vars, err := s.deps.Variables.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries := make([]variableEntry, 0, len(vars))
	for name, v := range vars {
		entries = append(entries, variableEntry{ID: v.ID, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return jsonResult(listVariablesResponse{Variables: entries, Total: len(entries)})
}

// --- helpers ---

// roundTrip sends one message through the bridge and returns the last reply.
func (s *Server) roundTrip(ctx context.Context, msgType string) (any, error) {
	return s.roundTripThen(ctx, msgType, nil)
}

// roundTripThen is roundTrip with then run on the reply while the bridge
// still holds its handling lock.
func (s *Server) roundTripThen(ctx context.Context, msgType string, then func(reply any) error) (any, error) {
	var rec bridge.Recorder
	err := s.deps.Bridge.HandleThen(ctx, bridge.Message{Type: msgType}, &rec, func() error {
		if then == nil {
			return nil
		}
		return then(rec.Last())
	})
	if err != nil {
		return nil, err
	}
	msg := rec.Last()
	if msg == nil {
		return nil, fmt.Errorf("no reply to %s", msgType)
	}
	return msg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
