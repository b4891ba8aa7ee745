package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/starford/headsync/internal/models"
)

const defaultLimit = 50

// RecordRename appends a rename and returns its id.
func (db *DB) RecordRename(ctx context.Context, r models.Rename) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO renames (from_path, to_path, slug, heading, checksum, trigger, renamed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.From, r.To, r.Slug, r.Heading, r.Checksum, r.Trigger, r.RenamedAt)
	if err != nil {
		return 0, fmt.Errorf("journal: insert rename: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal: last insert id: %w", err)
	}
	return id, nil
}

// Recent returns the newest renames first. A non-positive limit uses the
// default page size.
func (db *DB) Recent(ctx context.Context, limit int) ([]models.Rename, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, from_path, to_path, slug, heading, checksum, trigger, renamed_at
		FROM renames
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []models.Rename
	for rows.Next() {
		var r models.Rename
		if err := rows.Scan(&r.ID, &r.From, &r.To, &r.Slug, &r.Heading, &r.Checksum, &r.Trigger, &r.RenamedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// History follows a note back through its renames, starting from its
// current path. The newest rename comes first.
func (db *DB) History(ctx context.Context, path string) ([]models.Rename, error) {
	var out []models.Rename
	cur := path
	before := int64(math.MaxInt64)
	for {
		var r models.Rename
		err := db.conn.QueryRowContext(ctx, `
			SELECT id, from_path, to_path, slug, heading, checksum, trigger, renamed_at
			FROM renames
			WHERE to_path = ? AND id < ?
			ORDER BY id DESC
			LIMIT 1
		`, cur, before).Scan(&r.ID, &r.From, &r.To, &r.Slug, &r.Heading, &r.Checksum, &r.Trigger, &r.RenamedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("journal: history: %w", err)
		}
		out = append(out, r)
		cur, before = r.From, r.ID
	}
}
