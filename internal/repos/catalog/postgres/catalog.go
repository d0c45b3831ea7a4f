package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coinmarket/internal/repos/catalog"
)

var _ catalog.Catalog = (*catalogRepo)(nil)

type catalogRepo struct{ db *sql.DB }

func New(db *sql.DB) *catalogRepo {
	return &catalogRepo{db: db}
}

// ListOpen returns unresolved items in insertion order. The order is stable so
// front ends can render a deterministic listing.
func (r *catalogRepo) ListOpen(ctx context.Context) ([]catalog.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, title, odds, price, outcome
		FROM catalog_items
		WHERE outcome = $1
		ORDER BY id
	`, string(catalog.OutcomePending))
	if err != nil {
		return nil, fmt.Errorf("select open items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		var outcome string

		err := rows.Scan(&it.ID, &it.Category, &it.Title, &it.Odds, &it.Price, &outcome)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		it.Outcome = catalog.Outcome(outcome)
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func (r *catalogRepo) Get(ctx context.Context, itemID int64) (catalog.Item, error) {
	var it catalog.Item
	var outcome string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, category, title, odds, price, outcome
		FROM catalog_items
		WHERE id = $1
	`, itemID).Scan(&it.ID, &it.Category, &it.Title, &it.Odds, &it.Price, &outcome)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Item{}, catalog.ErrItemNotFound
		}

		return catalog.Item{}, fmt.Errorf("get item: %w", err)
	}

	it.Outcome = catalog.Outcome(outcome)

	return it, nil
}

// SetOutcome flips a PENDING item to the given outcome. The guarded UPDATE
// makes the transition single-shot: once resolved, the item never changes
// again, no matter how the callers interleave.
func (r *catalogRepo) SetOutcome(ctx context.Context, itemID int64, outcome catalog.Outcome) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE catalog_items
		SET outcome = $2
		WHERE id = $1
		  AND outcome = $3
	`, itemID, string(outcome), string(catalog.OutcomePending))
	if err != nil {
		return fmt.Errorf("set outcome: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		var exists bool
		err := r.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM catalog_items WHERE id = $1)
		`, itemID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check item exists: %w", err)
		}

		if !exists {
			return catalog.ErrItemNotFound
		}

		return catalog.ErrAlreadyResolved
	}

	return nil
}
