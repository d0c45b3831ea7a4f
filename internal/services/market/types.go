package market

import (
	"errors"
	"fmt"
	"strings"

	"coinmarket/internal/repos/catalog"
)

var ErrUnauthorized = errors.New("requester is not an administrator")
var ErrInvalidAmount = errors.New("amount must be positive")

// Receipt confirms a completed purchase. PricePaid is the catalog price at the
// moment of the debit.
type Receipt struct {
	UserID    int64
	ItemID    int64
	PricePaid int64
}

// RefundSummary reports the result of a refund sweep. Failed lists the user
// ids whose credit did not apply; their purchase records stay unrefunded.
type RefundSummary struct {
	Refunded int
	Failed   []int64
}

// ParseOutcome maps a caller-supplied token to a terminal outcome.
func ParseOutcome(s string) (catalog.Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WON", "WIN":
		return catalog.OutcomeWon, nil
	case "LOST", "LOSS":
		return catalog.OutcomeLost, nil
	default:
		return "", fmt.Errorf("invalid outcome %q", s)
	}
}
