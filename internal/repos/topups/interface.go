package topups

import (
	"database/sql"
	"errors"
)

// ErrDuplicateTopUp means the provider transaction id was credited before.
// Payment webhooks retry; the unique id keeps a retry from crediting twice.
var ErrDuplicateTopUp = errors.New("duplicate top-up transaction")

type TopUps interface {
	Insert(tx *sql.Tx, providerTxID string, userID, amount int64) error
}
