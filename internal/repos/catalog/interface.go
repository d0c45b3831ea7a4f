package catalog

import (
	"context"
	"errors"
)

var ErrItemNotFound = errors.New("catalog item not found")
var ErrAlreadyResolved = errors.New("catalog item already resolved")

// Outcome is the resolution state of a catalog item. An item starts PENDING
// and is resolved exactly once to WON or LOST.
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomeWon     Outcome = "WON"
	OutcomeLost    Outcome = "LOST"
)

// Item is a purchasable catalog entry. Category, title and odds are display
// metadata the ledger core never interprets.
type Item struct {
	ID       int64
	Category string
	Title    string
	Odds     string
	Price    int64
	Outcome  Outcome
}

type Catalog interface {
	ListOpen(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, itemID int64) (Item, error)
	SetOutcome(ctx context.Context, itemID int64, outcome Outcome) error
}
