package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coinmarket/internal/repos/accounts"
)

func (r *accountsRepo) Get(ctx context.Context, userID int64) (accounts.Account, error) {
	var a accounts.Account

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, phone, balance
		FROM accounts
		WHERE user_id = $1
	`, userID).Scan(&a.UserID, &a.Phone, &a.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, accounts.ErrNotRegistered
		}

		return accounts.Account{}, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM accounts
		WHERE user_id = $1
	`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrNotRegistered
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
