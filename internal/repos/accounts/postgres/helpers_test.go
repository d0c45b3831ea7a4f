package accounts

import (
	"database/sql"
	"testing"
)

func seedAccount(t *testing.T, db *sql.DB, userID, balance int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (user_id, phone, balance) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance
	`, userID, "+3700000000", balance)
	if err != nil {
		t.Fatalf("seed account(%d): %v", userID, err)
	}
}
