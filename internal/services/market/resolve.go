package market

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"coinmarket/internal/infra/metrics"
	"coinmarket/internal/infra/pgutils"
	"coinmarket/internal/repos/catalog"
	"coinmarket/internal/repos/purchases"
)

// ResolveItem marks an item's outcome and, for a loss, refunds every recorded
// buyer their exact price paid. Only configured administrators may call it.
//
// The sweep credits each buyer in its own transaction: one bad record must not
// abort the rest, and one long batch must not hold every buyer's row lock at
// once. Records whose credit failed stay unrefunded and are reported in the
// summary for follow-up.
func (s *MarketService) ResolveItem(ctx context.Context, requesterID, itemID int64, outcome catalog.Outcome) (RefundSummary, error) {
	if err := s.authorize(requesterID); err != nil {
		return RefundSummary{}, err
	}

	err := s.catalog.SetOutcome(ctx, itemID, outcome)
	if err != nil {
		return RefundSummary{}, fmt.Errorf("set outcome: %w", err)
	}

	if outcome != catalog.OutcomeLost {
		return RefundSummary{}, nil
	}

	recs, err := s.purchases.ListUnrefunded(ctx, itemID)
	if err != nil {
		return RefundSummary{}, fmt.Errorf("list unrefunded purchases: %w", err)
	}

	var summary RefundSummary
	for _, rec := range recs {
		err := s.refundRecord(ctx, rec)
		if err != nil {
			slog.Error("refund failed",
				"user_id", rec.UserID,
				"item_id", rec.ItemID,
				"price_paid", rec.PricePaid,
				"error", err,
			)
			metrics.RefundFailuresTotal.Inc()
			summary.Failed = append(summary.Failed, rec.UserID)

			continue
		}

		metrics.RefundsTotal.Inc()
		summary.Refunded++
	}

	return summary, nil
}

func (s *MarketService) refundRecord(ctx context.Context, rec purchases.Record) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.accounts.IncreaseBalance(tx, rec.UserID, rec.PricePaid)
		if err != nil {
			return fmt.Errorf("credit refund: %w", err)
		}

		err = s.purchases.MarkRefunded(tx, rec.UserID, rec.ItemID)
		if err != nil {
			return fmt.Errorf("mark refunded: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("refund record: %w", err)
	}

	return nil
}

// authorize is the admin gate: pass/fail against the configured id set, no
// side effects.
func (s *MarketService) authorize(requesterID int64) error {
	if _, ok := s.admins[requesterID]; !ok {
		return ErrUnauthorized
	}

	return nil
}
