package market

import (
	"context"
	"database/sql"
	"fmt"

	"coinmarket/internal/infra/metrics"
	"coinmarket/internal/infra/pgutils"
	"coinmarket/internal/repos/accounts"
)

// Purchase debits the item's price and records the purchase in one DB
// transaction:
//
// 1) Resolve the item (price snapshot).
// 2) Lock the buyer's account row (FOR UPDATE).
// 3) Pre-check the locked balance, then apply the guarded debit.
// 4) Insert the purchase record (duplicate -> ErrDuplicatePurchase).
//
// A failure at any step rolls the whole transaction back, so there is no
// observable debited-but-unrecorded state.
func (s *MarketService) Purchase(ctx context.Context, userID, itemID int64) (Receipt, error) {
	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return Receipt{}, fmt.Errorf("resolve item: %w", err)
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.accounts.LockAndGetBalance(tx, userID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		// pre-check against locked balance
		if balance < item.Price {
			return fmt.Errorf("pre-check debit: %w", accounts.ErrInsufficientFunds)
		}

		err = s.accounts.DecreaseBalance(tx, userID, item.Price)
		if err != nil {
			return fmt.Errorf("decrease balance: %w", err)
		}

		err = s.purchases.Insert(tx, userID, itemID, item.Price)
		if err != nil {
			return fmt.Errorf("record purchase: %w", err)
		}

		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("purchase: %w", err)
	}

	metrics.PurchasesTotal.Inc()

	return Receipt{UserID: userID, ItemID: itemID, PricePaid: item.Price}, nil
}
