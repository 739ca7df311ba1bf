package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/maxx"
)

// Administrative operations. All of them require the owner capability and
// validate their bounds before touching state.

func (l *Ledger) requireOwner(caller common.Address) error {
	if !l.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	return nil
}

// SetTransferTax changes the transfer tax, bounded by the rules' min/max.
func (l *Ledger) SetTransferTax(caller common.Address, bps uint64) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if bps < l.rules.MinTransferTaxBps || bps > l.rules.MaxTransferTaxBps {
		return maxx.NewConfigurationError("transferTaxBps", bps, "must stay within [minTax, maxTax]")
	}
	l.taxBps = bps
	l.log.Info("transfer tax changed", "bps", bps)
	return nil
}

// SetWhaleLimit changes the whale limit. The limit can never drop below the
// rules' minimum.
func (l *Ledger) SetWhaleLimit(caller common.Address, limit *big.Int) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if limit == nil || limit.Cmp(l.rules.MinWhaleLimit) < 0 {
		return maxx.NewConfigurationError("whaleLimit", limit, "must be at least the minimum whale limit")
	}
	l.whaleLimit = new(big.Int).Set(limit)
	return nil
}

// SetGlobalDailySellLimit changes the daily sell limit, bounded from below
// by the rules' minimum.
func (l *Ledger) SetGlobalDailySellLimit(caller common.Address, limit *big.Int) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if limit == nil || limit.Cmp(l.rules.MinGlobalDailySellLimit) < 0 {
		return maxx.NewConfigurationError("globalDailySellLimit", limit, "must be at least the minimum daily sell limit")
	}
	l.dailySellLimit = new(big.Int).Set(limit)
	return nil
}

// SetBlocksBetweenTransfers changes the anti-bot block gap (at most 5).
func (l *Ledger) SetBlocksBetweenTransfers(caller common.Address, blocks uint64) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if blocks > maxx.MaxBlocksBetweenTransfers {
		return maxx.NewConfigurationError("blocksBetweenTransfers", blocks, "must not exceed 5")
	}
	l.blocksBetweenTransfers = blocks
	return nil
}

// SetBlockLimited toggles the block-gap rule.
func (l *Ledger) SetBlockLimited(caller common.Address, limited bool) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.blockLimited = limited
	return nil
}

// AddPool registers a liquidity pool address.
func (l *Ledger) AddPool(caller, pool common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.pools[pool] = true
	l.log.Info("pool registered", "pool", pool)
	return nil
}

// RemovePool unregisters a liquidity pool address.
func (l *Ledger) RemovePool(caller, pool common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	delete(l.pools, pool)
	return nil
}

// Allow exempts an address from tax, whale limit and block-gap checks.
func (l *Ledger) Allow(caller, addr common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.allowlist[addr] = true
	return nil
}

// Disallow removes an address from the allowlist.
func (l *Ledger) Disallow(caller, addr common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	delete(l.allowlist, addr)
	return nil
}

// BlockAddress bars an address from transferring entirely.
func (l *Ledger) BlockAddress(caller, addr common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.blocklist[addr] = true
	return nil
}

// UnblockAddress removes an address from the blocklist.
func (l *Ledger) UnblockAddress(caller, addr common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	delete(l.blocklist, addr)
	return nil
}

// Pause suspends all transfers.
func (l *Ledger) Pause(caller common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.paused = true
	l.log.Warn("transfers paused")
	return nil
}

// Unpause resumes transfers.
func (l *Ledger) Unpause(caller common.Address) error {
	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.paused = false
	l.log.Warn("transfers unpaused")
	return nil
}
