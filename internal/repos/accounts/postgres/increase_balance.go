package accounts

import (
	"database/sql"
	"fmt"

	"coinmarket/internal/repos/accounts"
)

func (r *accountsRepo) IncreaseBalance(tx *sql.Tx, userID int64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("increase balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrNotRegistered
	}

	return nil
}
