package accounts

import (
	"database/sql"
	"fmt"

	"coinmarket/internal/repos/accounts"
)

// DecreaseBalance debits the account only when the remaining balance stays
// non-negative; a zero-row update means the funds were insufficient.
func (r *accountsRepo) DecreaseBalance(tx *sql.Tx, userID int64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance - $2
		WHERE user_id = $1
		  AND balance >= $2
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("decrease balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrInsufficientFunds
	}

	return nil
}
