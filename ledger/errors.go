package ledger

import (
	"errors"
)

// Ledger error kinds. Every validation failure aborts the operation with no
// state mutation; nothing is retried inside the core.
var (
	// ErrInsufficientBalance is returned when a transfer or burn exceeds
	// the source balance.
	ErrInsufficientBalance = errors.New("transfer amount exceeds balance")

	// ErrInsufficientAllowance is returned by TransferFrom when the spender
	// allowance is too small.
	ErrInsufficientAllowance = errors.New("transfer amount exceeds allowance")

	// ErrPaused is returned while transfers are paused.
	ErrPaused = errors.New("token transfers are paused")

	// ErrBlockedAddress is returned when a party is blocklisted, or when
	// the block-gap anti-bot rule rejects a too-recent opposite-direction
	// transfer.
	ErrBlockedAddress = errors.New("address is blocked from transferring")

	// ErrWhaleLimitExceeded is returned when a single non-exempt transfer
	// exceeds the whale limit.
	ErrWhaleLimitExceeded = errors.New("transfer exceeds the whale limit")

	// ErrDailySellLimitExceeded is returned when a pool-bound transfer
	// would push the day's sold volume over the global daily sell limit.
	ErrDailySellLimitExceeded = errors.New("transfer exceeds the global daily sell limit")
)
