package stake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/MaxxFinance/maxx-finance/inter"
)

// Position is one stake. Ids are sequential and never reused; an unstaked
// position stays in the arena zeroed and ownerless.
type Position struct {
	ID    uint64
	Owner common.Address
	Name  string

	// Amount is the staked principal in base units.
	Amount *big.Int
	// Shares is the yield-bearing unit derived from amount and duration at
	// creation/restake time; immutable otherwise.
	Shares *big.Int

	DurationDays uint64
	Start        inter.Timestamp

	// NftBonusBps is the share uplift that was applied at creation.
	NftBonusBps uint64
}

// Matured reports whether the committed duration has fully elapsed at now.
func (p *Position) Matured(now inter.Timestamp) bool {
	return now.DaysSince(p.Start) >= p.DurationDays
}

// zeroed reports whether the position was destroyed by unstake.
func (p *Position) zeroed() bool {
	return p.Owner == (common.Address{})
}

// copyOf returns a defensive copy for view accessors.
func (p *Position) copyOf() Position {
	cp := *p
	if p.Amount != nil {
		cp.Amount = new(big.Int).Set(p.Amount)
	}
	if p.Shares != nil {
		cp.Shares = new(big.Int).Set(p.Shares)
	}
	return cp
}
