package mcp

import (
	goMCP "github.com/mark3labs/mcp-go/mcp"

	"dbdesigner/internal/models"
)

func arguments(request goMCP.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return nil
}

// optString returns nil when key is absent so patches leave the field alone.
func optString(args map[string]any, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func optBool(args map[string]any, key string) *bool {
	if v, ok := args[key].(bool); ok {
		return &v
	}
	return nil
}

func optPosition(args map[string]any, key string) *models.Position {
	raw, ok := args[key].(map[string]any)
	if !ok {
		return nil
	}
	x, xok := raw["x"].(float64)
	y, yok := raw["y"].(float64)
	if !xok || !yok {
		return nil
	}
	return &models.Position{X: x, Y: y}
}
