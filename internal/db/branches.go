package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertBranch = `
INSERT INTO branch (name)
VALUES ($1)
RETURNING id, name
`

func (q *Queries) InsertBranch(ctx context.Context, name string) (Branch, error) {
	row := q.db.QueryRow(ctx, insertBranch, name)
	var b Branch
	err := row.Scan(&b.ID, &b.Name)
	return b, err
}

const getBranchByID = `
SELECT id, name FROM branch WHERE id = $1
`

func (q *Queries) GetBranchByID(ctx context.Context, id pgtype.UUID) (Branch, error) {
	row := q.db.QueryRow(ctx, getBranchByID, id)
	var b Branch
	err := row.Scan(&b.ID, &b.Name)
	return b, err
}

const listBranches = `
SELECT id, name FROM branch
ORDER BY name
LIMIT $1 OFFSET $2
`

// ListBranchesParams carries pagination bounds for ListBranches.
type ListBranchesParams struct {
	LimitValue  int32
	OffsetValue int32
}

func (q *Queries) ListBranches(ctx context.Context, arg ListBranchesParams) ([]Branch, error) {
	rows, err := q.db.Query(ctx, listBranches, arg.LimitValue, arg.OffsetValue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const countBranches = `
SELECT count(*) FROM branch
`

func (q *Queries) CountBranches(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countBranches)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteBranch = `
DELETE FROM branch WHERE id = $1
`

func (q *Queries) DeleteBranch(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteBranch, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
