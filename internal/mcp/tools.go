// Package mcp exposes the design editing operations as MCP tools bound to a
// single project, so an assistant can read and change the schema.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goMCP "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"dbdesigner/internal/designer"
	"dbdesigner/internal/models"
	"dbdesigner/internal/services"
)

// DesignService is the part of the project service the tools use.
type DesignService interface {
	GetProject(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error)
	UpdateDesign(ctx context.Context, userID, projectID uuid.UUID, change func(models.Design) (models.Design, error)) (*models.Project, error)
	ExportSQL(ctx context.Context, userID, projectID uuid.UUID, dialect string) (*services.Export, error)
}

// Tools holds the tool handlers for one project.
type Tools struct {
	svc       DesignService
	userID    uuid.UUID
	projectID uuid.UUID
}

func NewTools(svc DesignService, userID, projectID uuid.UUID) *Tools {
	return &Tools{svc: svc, userID: userID, projectID: projectID}
}

func sqlTypeNames() []string {
	out := make([]string, len(models.SqlTypes))
	for i, t := range models.SqlTypes {
		out[i] = string(t)
	}
	return out
}

func dialectNames() []string {
	out := make([]string, len(models.Dialects))
	for i, d := range models.Dialects {
		out[i] = string(d)
	}
	return out
}

var onDeleteNames = []string{
	string(models.OnDeleteCascade),
	string(models.OnDeleteRestrict),
	string(models.OnDeleteSetNull),
}

func positionProperties() map[string]any {
	return map[string]any{
		"x": map[string]any{"type": "number"},
		"y": map[string]any{"type": "number"},
	}
}

func RegisterTools(s *server.MCPServer, t *Tools) {
	getDesignTool := goMCP.NewTool("get_design",
		goMCP.WithDescription("Get the current database design in terms of tables, columns, and relationships."),
	)

	addTableTool := goMCP.NewTool("add_table",
		goMCP.WithDescription("Add a new table to the database design."),
		goMCP.WithString("name", goMCP.Required(), goMCP.Description("The name of the table to add")),
		goMCP.WithString("description", goMCP.Description("Optional description of the table")),
		goMCP.WithObject("position",
			goMCP.Description("Position of the table in the visual designer"),
			goMCP.Properties(positionProperties()),
		),
	)

	removeTableTool := goMCP.NewTool("remove_table",
		goMCP.WithDescription("Remove a table from the database design."),
		goMCP.WithString("tableId", goMCP.Required(), goMCP.Description("The ID of the table to remove")),
	)

	updateTableTool := goMCP.NewTool("update_table",
		goMCP.WithDescription("Update a table's properties in the database design."),
		goMCP.WithString("tableId", goMCP.Required(), goMCP.Description("The ID of the table to update")),
		goMCP.WithString("name", goMCP.Description("New name for the table")),
		goMCP.WithString("description", goMCP.Description("New description for the table")),
		goMCP.WithObject("position",
			goMCP.Description("New position of the table in the visual designer"),
			goMCP.Properties(positionProperties()),
		),
	)

	addColumnTool := goMCP.NewTool("add_column",
		goMCP.WithDescription("Add a new column to a table in the database design."),
		goMCP.WithString("tableId", goMCP.Required(), goMCP.Description("The ID of the table to add the column to")),
		goMCP.WithString("name", goMCP.Required(), goMCP.Description("The name of the column")),
		goMCP.WithString("type", goMCP.Required(), goMCP.Enum(sqlTypeNames()...), goMCP.Description("The SQL type of the column")),
		goMCP.WithBoolean("isPrimaryKey", goMCP.Description("Whether this column is a primary key")),
		goMCP.WithBoolean("isNullable", goMCP.Description("Whether this column can be null")),
		goMCP.WithBoolean("isUnique", goMCP.Description("Whether this column has a unique constraint")),
		goMCP.WithString("defaultValue", goMCP.Description("Default value for the column")),
		goMCP.WithString("comment", goMCP.Description("Comment for the column")),
	)

	removeColumnTool := goMCP.NewTool("remove_column",
		goMCP.WithDescription("Remove a column from a table in the database design."),
		goMCP.WithString("tableId", goMCP.Required(), goMCP.Description("The ID of the table containing the column")),
		goMCP.WithString("columnId", goMCP.Required(), goMCP.Description("The ID of the column to remove")),
	)

	updateColumnTool := goMCP.NewTool("update_column",
		goMCP.WithDescription("Update a column's properties in the database design."),
		goMCP.WithString("tableId", goMCP.Required(), goMCP.Description("The ID of the table containing the column")),
		goMCP.WithString("columnId", goMCP.Required(), goMCP.Description("The ID of the column to update")),
		goMCP.WithString("name", goMCP.Description("New name for the column")),
		goMCP.WithString("type", goMCP.Enum(sqlTypeNames()...), goMCP.Description("New SQL type of the column")),
		goMCP.WithBoolean("isPrimaryKey", goMCP.Description("Whether this column is a primary key")),
		goMCP.WithBoolean("isNullable", goMCP.Description("Whether this column can be null")),
		goMCP.WithBoolean("isUnique", goMCP.Description("Whether this column has a unique constraint")),
		goMCP.WithString("defaultValue", goMCP.Description("Default value for the column")),
		goMCP.WithString("comment", goMCP.Description("Comment for the column")),
	)

	addRelationshipTool := goMCP.NewTool("add_relationship",
		goMCP.WithDescription("Add a foreign key relationship between two tables."),
		goMCP.WithString("fromTable", goMCP.Required(), goMCP.Description("The ID of the source table")),
		goMCP.WithString("fromColumn", goMCP.Required(), goMCP.Description("The ID of the source column")),
		goMCP.WithString("toTable", goMCP.Required(), goMCP.Description("The ID of the target table")),
		goMCP.WithString("toColumn", goMCP.Required(), goMCP.Description("The ID of the target column")),
		goMCP.WithString("onDelete", goMCP.Enum(onDeleteNames...), goMCP.Description("Action to take when the referenced row is deleted")),
	)

	removeRelationshipTool := goMCP.NewTool("remove_relationship",
		goMCP.WithDescription("Remove a foreign key relationship from the database design."),
		goMCP.WithString("relationshipId", goMCP.Required(), goMCP.Description("The ID of the relationship to remove")),
	)

	updateRelationshipTool := goMCP.NewTool("update_relationship",
		goMCP.WithDescription("Update a foreign key relationship in the database design."),
		goMCP.WithString("relationshipId", goMCP.Required(), goMCP.Description("The ID of the relationship to update")),
		goMCP.WithString("fromTable", goMCP.Description("New source table ID")),
		goMCP.WithString("fromColumn", goMCP.Description("New source column ID")),
		goMCP.WithString("toTable", goMCP.Description("New target table ID")),
		goMCP.WithString("toColumn", goMCP.Description("New target column ID")),
		goMCP.WithString("onDelete", goMCP.Enum(onDeleteNames...), goMCP.Description("Action to take when the referenced row is deleted")),
	)

	generateSQLTool := goMCP.NewTool("generate_sql",
		goMCP.WithDescription("Generate the SQL DDL script for the current design."),
		goMCP.WithString("dialect", goMCP.Enum(dialectNames()...), goMCP.Description("Target dialect; defaults to the project's dialect")),
	)

	s.AddTool(getDesignTool, t.GetDesign)
	s.AddTool(addTableTool, t.AddTable)
	s.AddTool(removeTableTool, t.RemoveTable)
	s.AddTool(updateTableTool, t.UpdateTable)
	s.AddTool(addColumnTool, t.AddColumn)
	s.AddTool(removeColumnTool, t.RemoveColumn)
	s.AddTool(updateColumnTool, t.UpdateColumn)
	s.AddTool(addRelationshipTool, t.AddRelationship)
	s.AddTool(removeRelationshipTool, t.RemoveRelationship)
	s.AddTool(updateRelationshipTool, t.UpdateRelationship)
	s.AddTool(generateSQLTool, t.GenerateSQL)
}

// designResult is what every editing tool returns: the id it created, if any,
// and the design after the change.
type designResult struct {
	ID     string        `json:"id,omitempty"`
	Design models.Design `json:"design"`
}

func jsonResult(v any) (*goMCP.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return goMCP.NewToolResultText(string(jsonData)), nil
}

// apply runs change against the stored design and reports the outcome.
func (t *Tools) apply(ctx context.Context, change func(models.Design) (models.Design, string, error)) (*goMCP.CallToolResult, error) {
	var id string
	project, err := t.svc.UpdateDesign(ctx, t.userID, t.projectID, func(d models.Design) (models.Design, error) {
		out, newID, err := change(d)
		id = newID
		return out, err
	})
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Update failed: %v", err)), nil
	}
	return jsonResult(designResult{ID: id, Design: project.Design})
}

func (t *Tools) GetDesign(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	project, err := t.svc.GetProject(ctx, t.userID, t.projectID)
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Failed to load design: %v", err)), nil
	}
	return jsonResult(project.Design)
}

func (t *Tools) AddTable(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing name parameter: %v", err)), nil
	}
	args := arguments(request)
	in := designer.NewTable{Name: name, Position: optPosition(args, "position")}
	if v := optString(args, "description"); v != nil {
		in.Description = *v
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		return designer.AddTable(d, in)
	})
}

func (t *Tools) RemoveTable(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	tableID, err := request.RequireString("tableId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing tableId parameter: %v", err)), nil
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		out, err := designer.RemoveTable(d, tableID)
		return out, "", err
	})
}

func (t *Tools) UpdateTable(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	tableID, err := request.RequireString("tableId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing tableId parameter: %v", err)), nil
	}
	args := arguments(request)
	patch := designer.TablePatch{
		Name:        optString(args, "name"),
		Description: optString(args, "description"),
		Position:    optPosition(args, "position"),
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		out, err := designer.UpdateTable(d, tableID, patch)
		return out, "", err
	})
}

func (t *Tools) AddColumn(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	tableID, err := request.RequireString("tableId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing tableId parameter: %v", err)), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing name parameter: %v", err)), nil
	}
	typ, err := request.RequireString("type")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing type parameter: %v", err)), nil
	}

	args := arguments(request)
	in := designer.NewColumn{
		Name:       name,
		Type:       models.SqlType(typ),
		IsNullable: optBool(args, "isNullable"),
	}
	if v := optBool(args, "isPrimaryKey"); v != nil {
		in.IsPrimaryKey = *v
	}
	if v := optBool(args, "isUnique"); v != nil {
		in.IsUnique = *v
	}
	if v := optString(args, "defaultValue"); v != nil {
		in.DefaultValue = *v
	}
	if v := optString(args, "comment"); v != nil {
		in.Comment = *v
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		return designer.AddColumn(d, tableID, in)
	})
}

func (t *Tools) RemoveColumn(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	tableID, err := request.RequireString("tableId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing tableId parameter: %v", err)), nil
	}
	columnID, err := request.RequireString("columnId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing columnId parameter: %v", err)), nil
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		out, err := designer.RemoveColumn(d, tableID, columnID)
		return out, "", err
	})
}

func (t *Tools) UpdateColumn(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	tableID, err := request.RequireString("tableId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing tableId parameter: %v", err)), nil
	}
	columnID, err := request.RequireString("columnId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing columnId parameter: %v", err)), nil
	}

	args := arguments(request)
	patch := designer.ColumnPatch{
		Name:         optString(args, "name"),
		IsPrimaryKey: optBool(args, "isPrimaryKey"),
		IsNullable:   optBool(args, "isNullable"),
		IsUnique:     optBool(args, "isUnique"),
		DefaultValue: optString(args, "defaultValue"),
		Comment:      optString(args, "comment"),
	}
	if v := optString(args, "type"); v != nil {
		typ := models.SqlType(*v)
		patch.Type = &typ
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		out, err := designer.UpdateColumn(d, tableID, columnID, patch)
		return out, "", err
	})
}

func (t *Tools) AddRelationship(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	var in designer.NewRelationship
	for _, p := range []struct {
		key string
		dst *string
	}{
		{"fromTable", &in.FromTable},
		{"fromColumn", &in.FromColumn},
		{"toTable", &in.ToTable},
		{"toColumn", &in.ToColumn},
	} {
		v, err := request.RequireString(p.key)
		if err != nil {
			return goMCP.NewToolResultError(fmt.Sprintf("Missing %s parameter: %v", p.key, err)), nil
		}
		*p.dst = v
	}
	if v := optString(arguments(request), "onDelete"); v != nil {
		in.OnDelete = models.OnDeleteAction(*v)
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		return designer.AddRelationship(d, in)
	})
}

func (t *Tools) RemoveRelationship(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	relationshipID, err := request.RequireString("relationshipId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing relationshipId parameter: %v", err)), nil
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		out, err := designer.RemoveRelationship(d, relationshipID)
		return out, "", err
	})
}

func (t *Tools) UpdateRelationship(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	relationshipID, err := request.RequireString("relationshipId")
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("Missing relationshipId parameter: %v", err)), nil
	}

	args := arguments(request)
	patch := designer.RelationshipPatch{
		FromTable:  optString(args, "fromTable"),
		FromColumn: optString(args, "fromColumn"),
		ToTable:    optString(args, "toTable"),
		ToColumn:   optString(args, "toColumn"),
	}
	if v := optString(args, "onDelete"); v != nil {
		action := models.OnDeleteAction(*v)
		patch.OnDelete = &action
	}
	return t.apply(ctx, func(d models.Design) (models.Design, string, error) {
		out, err := designer.UpdateRelationship(d, relationshipID, patch)
		return out, "", err
	})
}

func (t *Tools) GenerateSQL(ctx context.Context, request goMCP.CallToolRequest) (*goMCP.CallToolResult, error) {
	dialect := ""
	if v := optString(arguments(request), "dialect"); v != nil {
		dialect = *v
	}
	export, err := t.svc.ExportSQL(ctx, t.userID, t.projectID, dialect)
	if err != nil {
		return goMCP.NewToolResultError(fmt.Sprintf("SQL generation failed: %v", err)), nil
	}
	return goMCP.NewToolResultText(export.SQL), nil
}
