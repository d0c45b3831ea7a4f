package accounts

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotRegistered = errors.New("account not registered")
var ErrAlreadyRegistered = errors.New("account already registered")
var ErrInsufficientFunds = errors.New("insufficient funds")

// Account is a registered user's ledger row. Balance is an integer number of
// coins; it never goes negative.
type Account struct {
	UserID  int64
	Phone   string
	Balance int64
}

type Accounts interface {
	Register(ctx context.Context, userID int64, phone string) error
	Get(ctx context.Context, userID int64) (Account, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	LockAndGetBalance(tx *sql.Tx, userID int64) (int64, error)
	IncreaseBalance(tx *sql.Tx, userID int64, amount int64) error
	DecreaseBalance(tx *sql.Tx, userID int64, amount int64) error
}
