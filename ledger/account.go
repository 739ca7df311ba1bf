package ledger

import (
	"math/big"
)

// Account is the per-address ledger record. Accounts are created lazily on
// first touch and never deleted.
type Account struct {
	// Balance is the token balance in base units.
	Balance *big.Int

	// LastBuyBlock is the block of the most recent pool→address transfer.
	LastBuyBlock uint64
	// LastSellBlock is the block of the most recent address→pool transfer.
	LastSellBlock uint64

	// hasBought / hasSold distinguish "never traded" from "traded at block
	// zero" for the block-gap rule.
	hasBought bool
	hasSold   bool
}

func newAccount() *Account {
	return &Account{Balance: new(big.Int)}
}
