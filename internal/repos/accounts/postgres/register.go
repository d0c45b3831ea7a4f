package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"coinmarket/internal/repos/accounts"
)

func (r *accountsRepo) Register(ctx context.Context, userID int64, phone string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, phone, balance)
		VALUES ($1, $2, 0)
	`, userID, phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return accounts.ErrAlreadyRegistered
		}

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}
