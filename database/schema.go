package database

import (
	"context"
	"fmt"
	"saasanalytics/models"

	"gorm.io/gorm"
)

// TableSchema describes one queryable table.
type TableSchema struct {
	Name    string         `json:"name"`
	Columns []ColumnSchema `json:"columns"`
}

// ColumnSchema describes one column as it exists in the store.
type ColumnSchema struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Hint     string `json:"hint,omitempty"`
}

// DescribeSchema reads the live column list of the analytics tables.
func (s *Store) DescribeSchema(ctx context.Context) ([]TableSchema, error) {
	db := s.db.WithContext(ctx)

	tables := []any{&models.User{}, &models.Event{}, &models.Subscription{}}
	out := make([]TableSchema, 0, len(tables))
	for _, model := range tables {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		name := stmt.Schema.Table

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
		}

		table := TableSchema{Name: name, Columns: make([]ColumnSchema, 0, len(columnTypes))}
		for _, ct := range columnTypes {
			nullable, _ := ct.Nullable()
			table.Columns = append(table.Columns, ColumnSchema{
				Name:     ct.Name(),
				Type:     ct.DatabaseTypeName(),
				Nullable: nullable,
				Hint:     models.ColumnHints[name][ct.Name()],
			})
		}
		out = append(out, table)
	}
	return out, nil
}
