package mcp

import "github.com/mark3labs/mcp-go/mcp"

func checkSelectionTool() mcp.Tool {
	return mcp.NewTool("check_selection",
		mcp.WithDescription("Count the fill and stroke bindings under the current selection that use a convertible paint style. Returns a selection-update message."),
	)
}

func convertTool() mcp.Tool {
	return mcp.NewTool("convert",
		mcp.WithDescription("Rebind every convertible paint style under the current selection to its color variable. Returns a conversion-complete message with converted/failed counts and distinct errors."),
		mcp.WithBoolean("save",
			mcp.Description("Write the document back to its file after converting (default false)"),
		),
	)
}

func previewConversionTool() mcp.Tool {
	return mcp.NewTool("preview_conversion",
		mcp.WithDescription("Dry run of convert: resolves every binding under the selection and lists what would be rebound, without changing the document."),
	)
}

func selectTool() mcp.Tool {
	return mcp.NewTool("select",
		mcp.WithDescription("Replace the selection by node ids or by a name-path glob such as \"Page 1/**/Button*\". Returns the new selection-update message."),
		mcp.WithArray("node_ids",
			mcp.Description("Node ids to select, in order"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob over node name paths; used when node_ids is empty"),
		),
	)
}

func mapStyleNameTool() mcp.Tool {
	return mcp.NewTool("map_style_name",
		mcp.WithDescription("Return the variable name a paint style name maps to, and whether that variable exists."),
		mcp.WithString("style_name",
			mcp.Required(),
			mcp.Description("Paint style name, e.g. M3/sys/light/primary-container"),
		),
	)
}

func listVariablesTool() mcp.Tool {
	return mcp.NewTool("list_variables",
		mcp.WithDescription("List the color variables available as conversion targets."),
	)
}
