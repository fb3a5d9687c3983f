package db

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
	"github.com/pdxmph/hangs-tui/internal/id"
)

// CreateTag adds a tag. Names are not required to be unique.
func (db *DB) CreateTag(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"name": "is required"})
	}

	tagID, err := id.Generate(id.Tag)
	if err != nil {
		return nil, err
	}
	t := &Tag{ID: tagID, Name: name, CreatedAt: db.timestamp()}

	query, args, err := sq.Insert("tags").
		Columns("id", "name", "created_at").
		Values(t.ID, t.Name, t.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("inserting tag: %w", err)
	}

	db.changed(ctx)
	return t, nil
}
