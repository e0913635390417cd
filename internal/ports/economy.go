package ports

import "context"

// WalletUpdate represents a single chip balance change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for the chip economy.
type EconomyPort interface {
	// GetBalance retrieves the current chip balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes atomically.
	// This is used at the end of a round to settle all stakes.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
