// Package designer holds the edits the canvas, the dialogs and the assistant
// tools make to a design. Every operation returns a new design and leaves its
// input untouched.
package designer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dbdesigner/internal/models"
)

var (
	ErrTableNotFound        = errors.New("table not found")
	ErrColumnNotFound       = errors.New("column not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// NewID returns a time ordered id for a new table, column or relationship.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewDesign returns the empty design every new project starts with.
func NewDesign(id, name, description string) models.Design {
	return models.Design{
		ID:            id,
		Name:          name,
		Description:   description,
		Tables:        []models.Table{},
		Relationships: []models.ForeignKey{},
		ExampleData:   map[string][]any{},
	}
}

// Clone deep-copies d so the copy can be edited independently.
func Clone(d models.Design) models.Design {
	out := d
	out.Tables = make([]models.Table, len(d.Tables))
	for i, t := range d.Tables {
		out.Tables[i] = cloneTable(t)
	}
	out.Relationships = append([]models.ForeignKey{}, d.Relationships...)
	if d.ExampleData != nil {
		out.ExampleData = make(map[string][]any, len(d.ExampleData))
		for k, rows := range d.ExampleData {
			out.ExampleData[k] = append([]any(nil), rows...)
		}
	}
	return out
}

func cloneTable(t models.Table) models.Table {
	out := t
	if t.Position != nil {
		p := *t.Position
		out.Position = &p
	}
	out.Columns = make([]models.Column, len(t.Columns))
	for i, c := range t.Columns {
		if c.IsNullable != nil {
			v := *c.IsNullable
			c.IsNullable = &v
		}
		out.Columns[i] = c
	}
	return out
}

type NewTable struct {
	Name        string
	Description string
	Position    *models.Position
}

// AddTable appends an empty table and returns the design and the new table id.
func AddTable(d models.Design, in NewTable) (models.Design, string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return d, "", errors.New("table name is required")
	}
	out := Clone(d)
	t := models.Table{
		ID:          NewID(),
		Name:        in.Name,
		Description: in.Description,
		Columns:     []models.Column{},
	}
	if in.Position != nil {
		p := *in.Position
		t.Position = &p
	}
	out.Tables = append(out.Tables, t)
	return out, t.ID, nil
}

// TablePatch lists the table fields to change; nil fields are left alone.
type TablePatch struct {
	Name        *string
	Description *string
	Position    *models.Position
}

func UpdateTable(d models.Design, tableID string, patch TablePatch) (models.Design, error) {
	out := Clone(d)
	t := findTable(out.Tables, tableID)
	if t == nil {
		return d, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return d, errors.New("table name is required")
		}
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Position != nil {
		p := *patch.Position
		t.Position = &p
	}
	return out, nil
}

// RemoveTable drops the table and every relationship that touches it.
func RemoveTable(d models.Design, tableID string) (models.Design, error) {
	if findTable(d.Tables, tableID) == nil {
		return d, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	out := Clone(d)
	tables := out.Tables[:0]
	for _, t := range out.Tables {
		if t.ID != tableID {
			tables = append(tables, t)
		}
	}
	out.Tables = tables
	out.Relationships = filterRelationships(out.Relationships, func(fk models.ForeignKey) bool {
		return fk.FromTable != tableID && fk.ToTable != tableID
	})
	return out, nil
}

type NewColumn struct {
	Name         string
	Type         models.SqlType
	IsPrimaryKey bool
	IsNullable   *bool
	IsUnique     bool
	DefaultValue string
	Comment      string
}

// AddColumn appends a column to the table and returns the new column id.
func AddColumn(d models.Design, tableID string, in NewColumn) (models.Design, string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return d, "", errors.New("column name is required")
	}
	if !in.Type.Valid() {
		return d, "", fmt.Errorf("unsupported column type %q", in.Type)
	}
	out := Clone(d)
	t := findTable(out.Tables, tableID)
	if t == nil {
		return d, "", fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	c := models.Column{
		ID:           NewID(),
		Name:         in.Name,
		Type:         in.Type,
		IsPrimaryKey: in.IsPrimaryKey,
		IsUnique:     in.IsUnique,
		DefaultValue: in.DefaultValue,
		Comment:      in.Comment,
	}
	if in.IsNullable != nil {
		v := *in.IsNullable
		c.IsNullable = &v
	}
	t.Columns = append(t.Columns, c)
	return out, c.ID, nil
}

type ColumnPatch struct {
	Name         *string
	Type         *models.SqlType
	IsPrimaryKey *bool
	IsNullable   *bool
	IsUnique     *bool
	DefaultValue *string
	Comment      *string
}

func UpdateColumn(d models.Design, tableID, columnID string, patch ColumnPatch) (models.Design, error) {
	out := Clone(d)
	t := findTable(out.Tables, tableID)
	if t == nil {
		return d, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	c := findColumn(t.Columns, columnID)
	if c == nil {
		return d, fmt.Errorf("%w: %s", ErrColumnNotFound, columnID)
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return d, errors.New("column name is required")
		}
		c.Name = *patch.Name
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return d, fmt.Errorf("unsupported column type %q", *patch.Type)
		}
		c.Type = *patch.Type
	}
	if patch.IsPrimaryKey != nil {
		c.IsPrimaryKey = *patch.IsPrimaryKey
	}
	if patch.IsNullable != nil {
		v := *patch.IsNullable
		c.IsNullable = &v
	}
	if patch.IsUnique != nil {
		c.IsUnique = *patch.IsUnique
	}
	if patch.DefaultValue != nil {
		c.DefaultValue = *patch.DefaultValue
	}
	if patch.Comment != nil {
		c.Comment = *patch.Comment
	}
	return out, nil
}

// RemoveColumn drops the column and every relationship that uses it.
func RemoveColumn(d models.Design, tableID, columnID string) (models.Design, error) {
	t := findTable(d.Tables, tableID)
	if t == nil {
		return d, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	if findColumn(t.Columns, columnID) == nil {
		return d, fmt.Errorf("%w: %s", ErrColumnNotFound, columnID)
	}
	out := Clone(d)
	t = findTable(out.Tables, tableID)
	cols := t.Columns[:0]
	for _, c := range t.Columns {
		if c.ID != columnID {
			cols = append(cols, c)
		}
	}
	t.Columns = cols
	out.Relationships = filterRelationships(out.Relationships, func(fk models.ForeignKey) bool {
		return fk.FromColumn != columnID && fk.ToColumn != columnID
	})
	return out, nil
}

type NewRelationship struct {
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
	OnDelete   models.OnDeleteAction
}

// AddRelationship records a foreign key. The referenced ids are not checked;
// the export marks dangling references instead of failing.
func AddRelationship(d models.Design, in NewRelationship) (models.Design, string, error) {
	if in.FromTable == "" || in.FromColumn == "" || in.ToTable == "" || in.ToColumn == "" {
		return d, "", errors.New("fromTable, fromColumn, toTable and toColumn are required")
	}
	if in.OnDelete != "" && !in.OnDelete.Valid() {
		return d, "", fmt.Errorf("unsupported onDelete action %q", in.OnDelete)
	}
	out := Clone(d)
	fk := models.ForeignKey{
		ID:         NewID(),
		FromTable:  in.FromTable,
		FromColumn: in.FromColumn,
		ToTable:    in.ToTable,
		ToColumn:   in.ToColumn,
		OnDelete:   in.OnDelete,
	}
	out.Relationships = append(out.Relationships, fk)
	return out, fk.ID, nil
}

type RelationshipPatch struct {
	FromTable  *string
	FromColumn *string
	ToTable    *string
	ToColumn   *string
	OnDelete   *models.OnDeleteAction
}

func UpdateRelationship(d models.Design, relationshipID string, patch RelationshipPatch) (models.Design, error) {
	out := Clone(d)
	var fk *models.ForeignKey
	for i := range out.Relationships {
		if out.Relationships[i].ID == relationshipID {
			fk = &out.Relationships[i]
			break
		}
	}
	if fk == nil {
		return d, fmt.Errorf("%w: %s", ErrRelationshipNotFound, relationshipID)
	}
	if patch.FromTable != nil {
		fk.FromTable = *patch.FromTable
	}
	if patch.FromColumn != nil {
		fk.FromColumn = *patch.FromColumn
	}
	if patch.ToTable != nil {
		fk.ToTable = *patch.ToTable
	}
	if patch.ToColumn != nil {
		fk.ToColumn = *patch.ToColumn
	}
	if patch.OnDelete != nil {
		if *patch.OnDelete != "" && !patch.OnDelete.Valid() {
			return d, fmt.Errorf("unsupported onDelete action %q", *patch.OnDelete)
		}
		fk.OnDelete = *patch.OnDelete
	}
	return out, nil
}

func RemoveRelationship(d models.Design, relationshipID string) (models.Design, error) {
	found := false
	for _, fk := range d.Relationships {
		if fk.ID == relationshipID {
			found = true
			break
		}
	}
	if !found {
		return d, fmt.Errorf("%w: %s", ErrRelationshipNotFound, relationshipID)
	}
	out := Clone(d)
	out.Relationships = filterRelationships(out.Relationships, func(fk models.ForeignKey) bool {
		return fk.ID != relationshipID
	})
	return out, nil
}

func findTable(tables []models.Table, id string) *models.Table {
	for i := range tables {
		if tables[i].ID == id {
			return &tables[i]
		}
	}
	return nil
}

func findColumn(cols []models.Column, id string) *models.Column {
	for i := range cols {
		if cols[i].ID == id {
			return &cols[i]
		}
	}
	return nil
}

func filterRelationships(fks []models.ForeignKey, keep func(models.ForeignKey) bool) []models.ForeignKey {
	out := make([]models.ForeignKey, 0, len(fks))
	for _, fk := range fks {
		if keep(fk) {
			out = append(out, fk)
		}
	}
	return out
}
