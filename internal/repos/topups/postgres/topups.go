package topups

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"coinmarket/internal/repos/topups"
)

var _ topups.TopUps = (*topupsRepo)(nil)

type topupsRepo struct{ db *sql.DB }

func New(db *sql.DB) *topupsRepo {
	return &topupsRepo{db: db}
}

func (r *topupsRepo) Insert(tx *sql.Tx, providerTxID string, userID, amount int64) error {
	_, err := tx.Exec(`
		INSERT INTO topups (provider_tx_id, user_id, amount)
		VALUES ($1, $2, $3)
	`, providerTxID, userID, amount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return topups.ErrDuplicateTopUp
		}

		return fmt.Errorf("insert topup: %w", err)
	}

	return nil
}
