package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scholarship_admin/internal/app"
)

// nodeTables maps each node of the ownership graph to its table and the
// column pointing at its owner.
var nodeTables = map[app.Node]struct {
	table        string
	parentColumn string
}{
	app.NodeCycle:       {table: "cycles"},
	app.NodeCriterion:   {table: "cycle_criteria", parentColumn: "cycle_id"},
	app.NodeApplication: {table: "applications", parentColumn: "cycle_id"},
	app.NodeDocument:    {table: "application_documents", parentColumn: "application_id"},
	app.NodeReview:      {table: "application_reviews", parentColumn: "application_id"},
	app.NodeHistory:     {table: "application_history", parentColumn: "application_id"},
}

type postgresCascadeStore struct {
	db queryer
}

func childTable(n app.Node) (string, string, error) {
	t, ok := nodeTables[n]
	if !ok || t.parentColumn == "" {
		return "", "", fmt.Errorf("no owner column for %s", n)
	}
	return t.table, t.parentColumn, nil
}

func (s *postgresCascadeStore) ChildIDs(ctx context.Context, child app.Node, parentID int64) ([]int64, error) {
	table, column, err := childTable(child)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 ORDER BY id`, table, column), parentID)
	if err != nil {
		return nil, fmt.Errorf("error listing %s ids: %w", child, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning %s id: %w", child, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s ids: %w", child, err)
	}
	return ids, nil
}

func (s *postgresCascadeStore) DeleteChildren(ctx context.Context, child app.Node, parentID int64) (int64, error) {
	table, column, err := childTable(child)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, column), parentID)
	if err != nil {
		return 0, fmt.Errorf("error deleting %s rows: %w", child, err)
	}
	return res.RowsAffected()
}

func (s *postgresCascadeStore) DeleteNode(ctx context.Context, n app.Node, id int64) (bool, error) {
	t, ok := nodeTables[n]
	if !ok {
		return false, fmt.Errorf("unknown node kind %s", n)
	}
	var deleted int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING id`, t.table), id).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error deleting %s %d: %w", n, id, err)
	}
	return true, nil
}
