package purchases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"coinmarket/internal/repos/purchases"
)

var _ purchases.Purchases = (*purchasesRepo)(nil)

type purchasesRepo struct{ db *sql.DB }

func New(db *sql.DB) *purchasesRepo {
	return &purchasesRepo{db: db}
}

// Insert records a purchase. The (user_id, item_id) primary key enforces the
// one-purchase-per-item rule; a duplicate aborts the surrounding transaction,
// which rolls the paired debit back with it.
func (r *purchasesRepo) Insert(tx *sql.Tx, userID, itemID, pricePaid int64) error {
	_, err := tx.Exec(`
		INSERT INTO purchases (user_id, item_id, price_paid)
		VALUES ($1, $2, $3)
	`, userID, itemID, pricePaid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return purchases.ErrDuplicatePurchase
		}

		return fmt.Errorf("insert purchase: %w", err)
	}

	return nil
}

func (r *purchasesRepo) ListUnrefunded(ctx context.Context, itemID int64) ([]purchases.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, item_id, price_paid, refunded
		FROM purchases
		WHERE item_id = $1
		  AND NOT refunded
		ORDER BY user_id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("select unrefunded purchases: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *purchasesRepo) ListByUser(ctx context.Context, userID int64) ([]purchases.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, item_id, price_paid, refunded
		FROM purchases
		WHERE user_id = $1
		ORDER BY item_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select purchases by user: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// MarkRefunded flips the refunded flag at most once. A zero-row update means
// either the record is missing or it was refunded before.
func (r *purchasesRepo) MarkRefunded(tx *sql.Tx, userID, itemID int64) error {
	res, err := tx.Exec(`
		UPDATE purchases
		SET refunded = TRUE
		WHERE user_id = $1
		  AND item_id = $2
		  AND NOT refunded
	`, userID, itemID)
	if err != nil {
		return fmt.Errorf("mark refunded: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		var exists bool
		err := tx.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM purchases WHERE user_id = $1 AND item_id = $2)
		`, userID, itemID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check purchase exists: %w", err)
		}

		if !exists {
			return purchases.ErrPurchaseNotFound
		}

		return purchases.ErrAlreadyRefunded
	}

	return nil
}

func scanRecords(rows *sql.Rows) ([]purchases.Record, error) {
	var recs []purchases.Record
	for rows.Next() {
		var rec purchases.Record

		err := rows.Scan(&rec.UserID, &rec.ItemID, &rec.PricePaid, &rec.Refunded)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return recs, nil
}
