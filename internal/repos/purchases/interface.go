package purchases

import (
	"context"
	"database/sql"
	"errors"
)

var ErrDuplicatePurchase = errors.New("item already purchased by user")
var ErrPurchaseNotFound = errors.New("purchase not found")
var ErrAlreadyRefunded = errors.New("purchase already refunded")

// Record ties a buyer to an item. PricePaid is a snapshot of the item price at
// purchase time; later catalog edits never change what a refund pays back.
type Record struct {
	UserID    int64
	ItemID    int64
	PricePaid int64
	Refunded  bool
}

type Purchases interface {
	Insert(tx *sql.Tx, userID, itemID, pricePaid int64) error
	ListUnrefunded(ctx context.Context, itemID int64) ([]Record, error)
	ListByUser(ctx context.Context, userID int64) ([]Record, error)
	MarkRefunded(tx *sql.Tx, userID, itemID int64) error
}
