package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"coinmarket/internal/repos/accounts"
)

// LockAndGetBalance takes the account's row lock for the duration of tx.
// Every balance mutation on a user goes through this lock, which is what
// serializes concurrent operations on the same account.
func (r *accountsRepo) LockAndGetBalance(tx *sql.Tx, userID int64) (int64, error) {
	var balance int64

	err := tx.QueryRow(`
		SELECT balance
		FROM accounts
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrNotRegistered
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}
