package ledger

import "errors"

var (
	// Registry errors
	ErrAssetNotFound  = errors.New("ledger: asset not found")
	ErrDuplicateAsset = errors.New("ledger: asset already registered")

	// Mutation errors
	ErrInvalidAmount       = errors.New("ledger: amount must be positive")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrBalanceOverflow     = errors.New("ledger: balance overflow")

	// Audit errors
	ErrConservationViolated = errors.New("ledger: supply does not equal sum of balances")
)
