// Package market is the marketplace transaction engine. All balance movement
// funnels through it: purchase debits, refund credits and confirmed top-ups.
package market

import (
	"context"
	"database/sql"
	"fmt"

	"coinmarket/internal/repos/accounts"
	pgaccounts "coinmarket/internal/repos/accounts/postgres"
	"coinmarket/internal/repos/catalog"
	pgcatalog "coinmarket/internal/repos/catalog/postgres"
	"coinmarket/internal/repos/purchases"
	pgpurchases "coinmarket/internal/repos/purchases/postgres"
	"coinmarket/internal/repos/topups"
	pgtopups "coinmarket/internal/repos/topups/postgres"
)

type MarketService struct {
	db        *sql.DB
	accounts  accounts.Accounts
	catalog   catalog.Catalog
	purchases purchases.Purchases
	topups    topups.TopUps
	admins    map[int64]struct{}
}

// New wires the service against its Postgres repos. The admin set holds the
// user ids allowed to resolve catalog items.
func New(db *sql.DB, admins map[int64]struct{}) *MarketService {
	return &MarketService{
		db:        db,
		accounts:  pgaccounts.New(db),
		catalog:   pgcatalog.New(db),
		purchases: pgpurchases.New(db),
		topups:    pgtopups.New(db),
		admins:    admins,
	}
}

// Register creates an account with a zero balance.
func (s *MarketService) Register(ctx context.Context, userID int64, phone string) error {
	err := s.accounts.Register(ctx, userID, phone)
	if err != nil {
		return fmt.Errorf("register account: %w", err)
	}

	return nil
}

// GetBalance returns the user's current coin balance.
func (s *MarketService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	balance, err := s.accounts.GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// ListOpenItems returns the unresolved catalog in display order.
func (s *MarketService) ListOpenItems(ctx context.Context) ([]catalog.Item, error) {
	items, err := s.catalog.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open items: %w", err)
	}

	return items, nil
}

// ListPurchases returns the user's purchase history.
func (s *MarketService) ListPurchases(ctx context.Context, userID int64) ([]purchases.Record, error) {
	recs, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	return recs, nil
}
