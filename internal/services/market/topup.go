package market

import (
	"context"
	"database/sql"
	"fmt"

	"coinmarket/internal/infra/metrics"
	"coinmarket/internal/infra/pgutils"
)

// TopUp credits a confirmed provider payment to the user's balance and returns
// the new balance. The provider transaction id is recorded under a unique key
// inside the same transaction, so a retried webhook gets ErrDuplicateTopUp and
// the account is credited exactly once.
func (s *MarketService) TopUp(ctx context.Context, userID int64, providerTxID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.accounts.LockAndGetBalance(tx, userID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		err = s.topups.Insert(tx, providerTxID, userID, amount)
		if err != nil {
			return fmt.Errorf("record topup: %w", err)
		}

		err = s.accounts.IncreaseBalance(tx, userID, amount)
		if err != nil {
			return fmt.Errorf("increase balance: %w", err)
		}

		newBalance = balance + amount

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("top up: %w", err)
	}

	metrics.TopUpsTotal.Inc()

	return newBalance, nil
}
