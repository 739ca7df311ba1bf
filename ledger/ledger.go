// Package ledger implements the fungible token balance store and its
// transfer-control policy: allow/block lists, pool detection, the whale
// limit, the global daily sell limit, the inter-transfer block-gap anti-bot
// rule, pausability, and role-gated mint/burn.
//
// The ledger exclusively owns Account records. It performs no I/O and reads
// "now" and the current block only from the injected environment; callers
// supply their identity explicitly on every operation. Every operation
// validates completely before mutating anything, so a failure never leaves
// balances partially updated.
package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/maxx"
)

// Ledger is the token balance store. It is not safe for concurrent use;
// the host serializes all operations (see integration.System).
type Ledger struct {
	rules maxx.LedgerRules
	env   inter.Env
	roles inter.RoleChecker
	sink  inter.Sink
	log   log.Logger

	vault       common.Address
	totalSupply *big.Int

	accounts   map[common.Address]*Account
	allowances map[common.Address]map[common.Address]*big.Int

	pools     map[common.Address]bool
	allowlist map[common.Address]bool
	blocklist map[common.Address]bool

	// soldPerDay accumulates pool-bound volume per protocol day.
	soldPerDay map[uint64]*big.Int

	taxBps                 uint64
	whaleLimit             *big.Int
	dailySellLimit         *big.Int
	blocksBetweenTransfers uint64
	blockLimited           bool
	paused                 bool
}

// New creates a ledger with the given rules and mints the initial supply to
// the vault. The vault starts allowlisted, as in the original deployment.
func New(rules maxx.LedgerRules, env inter.Env, roles inter.RoleChecker, sink inter.Sink, vault common.Address) *Ledger {
	l := &Ledger{
		rules:                  rules,
		env:                    env,
		roles:                  roles,
		sink:                   sink,
		log:                    log.New("module", "ledger"),
		vault:                  vault,
		totalSupply:            new(big.Int),
		accounts:               make(map[common.Address]*Account),
		allowances:             make(map[common.Address]map[common.Address]*big.Int),
		pools:                  make(map[common.Address]bool),
		allowlist:              make(map[common.Address]bool),
		blocklist:              make(map[common.Address]bool),
		soldPerDay:             make(map[uint64]*big.Int),
		taxBps:                 rules.TransferTaxBps,
		whaleLimit:             new(big.Int).Set(rules.WhaleLimit),
		dailySellLimit:         new(big.Int).Set(rules.GlobalDailySellLimit),
		blocksBetweenTransfers: rules.BlocksBetweenTransfers,
	}
	l.allowlist[vault] = true
	if rules.InitialSupply != nil && rules.InitialSupply.Sign() > 0 {
		l.mint(vault, rules.InitialSupply)
	}
	return l
}

func (l *Ledger) account(addr common.Address) *Account {
	acc := l.accounts[addr]
	if acc == nil {
		acc = newAccount()
		l.accounts[addr] = acc
	}
	return acc
}

// BalanceOf returns the balance of addr. The returned value is a copy.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	if acc := l.accounts[addr]; acc != nil {
		return new(big.Int).Set(acc.Balance)
	}
	return new(big.Int)
}

// TotalSupply returns the circulating supply. The returned value is a copy.
func (l *Ledger) TotalSupply() *big.Int {
	return new(big.Int).Set(l.totalSupply)
}

// Vault returns the vault address.
func (l *Ledger) Vault() common.Address {
	return l.vault
}

// IsAllowed reports whether addr is allowlisted.
func (l *Ledger) IsAllowed(addr common.Address) bool {
	return l.allowlist[addr]
}

// IsBlocked reports whether addr is blocklisted.
func (l *Ledger) IsBlocked(addr common.Address) bool {
	return l.blocklist[addr]
}

// IsPool reports whether addr is a registered liquidity pool.
func (l *Ledger) IsPool(addr common.Address) bool {
	return l.pools[addr]
}

// TransferTaxBps returns the current transfer tax in basis points.
func (l *Ledger) TransferTaxBps() uint64 {
	return l.taxBps
}

// SoldToday returns the pool-bound volume recorded for the current protocol
// day. The returned value is a copy.
func (l *Ledger) SoldToday() *big.Int {
	if sold := l.soldPerDay[l.env.Now().Day()]; sold != nil {
		return new(big.Int).Set(sold)
	}
	return new(big.Int)
}

// Transfer moves amount from the caller to another address, applying the
// full transfer-control policy.
func (l *Ledger) Transfer(caller, to common.Address, amount *big.Int) error {
	return l.transfer(caller, to, amount)
}

// Approve sets the spender allowance of the caller and emits an Approval
// event. It overwrites any previous allowance.
func (l *Ledger) Approve(caller, spender common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if l.allowances[caller] == nil {
		l.allowances[caller] = make(map[common.Address]*big.Int)
	}
	l.allowances[caller][spender] = new(big.Int).Set(amount)
	l.sink.Emit(inter.ApprovalEvent{Owner: caller, Spender: spender, Value: new(big.Int).Set(amount)})
	return nil
}

// Allowance returns the remaining allowance of spender over owner's
// balance. The returned value is a copy.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	if a := l.allowances[owner]; a != nil && a[spender] != nil {
		return new(big.Int).Set(a[spender])
	}
	return new(big.Int)
}

// TransferFrom moves amount from one address to another on the strength of
// a prior approval. The allowance is decremented only after the transfer
// itself passed every policy check.
func (l *Ledger) TransferFrom(caller, from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance := l.allowances[from][caller]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.transfer(from, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

// Mint creates amount new tokens for to. Minter capability required.
func (l *Ledger) Mint(caller, to common.Address, amount *big.Int) error {
	if !l.roles.HasRole(inter.RoleMinter, caller) {
		return inter.ErrUnauthorized
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mint(to, amount)
	return nil
}

// Burn destroys amount tokens of from. Minter capability required.
func (l *Ledger) Burn(caller, from common.Address, amount *big.Int) error {
	if !l.roles.HasRole(inter.RoleMinter, caller) {
		return inter.ErrUnauthorized
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	acc := l.account(from)
	if acc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	acc.Balance.Sub(acc.Balance, amount)
	l.totalSupply.Sub(l.totalSupply, amount)
	l.sink.Emit(inter.TransferEvent{From: from, To: common.Address{}, Value: new(big.Int).Set(amount)})
	return nil
}

func (l *Ledger) mint(to common.Address, amount *big.Int) {
	acc := l.account(to)
	acc.Balance.Add(acc.Balance, amount)
	l.totalSupply.Add(l.totalSupply, amount)
	l.sink.Emit(inter.TransferEvent{From: common.Address{}, To: to, Value: new(big.Int).Set(amount)})
}

// transfer applies the transfer-control policy and moves the funds. All
// checks happen before the first mutation.
func (l *Ledger) transfer(from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if l.paused {
		return ErrPaused
	}
	if l.blocklist[from] || l.blocklist[to] {
		return ErrBlockedAddress
	}

	src := l.account(from)
	if src.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	poolFrom := l.pools[from]
	poolTo := l.pools[to]
	allowedFrom := l.allowlist[from]
	allowedTo := l.allowlist[to]
	block := l.env.BlockNumber()
	day := l.env.Now().Day()

	// Block-gap anti-bot rule: a sale too soon after a buy (or a buy too
	// soon after a sale) is rejected for non-allowlisted parties.
	if l.blockLimited && l.blocksBetweenTransfers > 0 {
		if poolTo && !allowedFrom && src.hasBought && block-src.LastBuyBlock < l.blocksBetweenTransfers {
			return ErrBlockedAddress
		}
		if poolFrom && !allowedTo {
			dst := l.account(to)
			if dst.hasSold && block-dst.LastSellBlock < l.blocksBetweenTransfers {
				return ErrBlockedAddress
			}
		}
	}

	// Whale limit: a single transfer landing on a non-pool address is
	// capped unless a party is allowlisted.
	if !allowedFrom && !allowedTo && !poolTo && amount.Cmp(l.whaleLimit) > 0 {
		return ErrWhaleLimitExceeded
	}

	// Daily sell limit: pool-bound volume is capped per protocol day.
	// Strict mode — an overflowing transfer fails instead of clamping.
	if poolTo {
		sold := l.soldPerDay[day]
		if sold == nil {
			sold = new(big.Int)
		}
		if new(big.Int).Add(sold, amount).Cmp(l.dailySellLimit) > 0 {
			return ErrDailySellLimitExceeded
		}
	}

	// Transfer tax applies only when a registered pool is the counterparty
	// and neither party is allowlisted. The tax is burned.
	tax := new(big.Int)
	if (poolFrom || poolTo) && !allowedFrom && !allowedTo && l.taxBps > 0 {
		tax.Mul(amount, new(big.Int).SetUint64(l.taxBps))
		tax.Div(tax, big.NewInt(maxx.BasisPoints))
	}

	// All checks passed; mutate.
	received := new(big.Int).Sub(amount, tax)
	src.Balance.Sub(src.Balance, amount)
	dst := l.account(to)
	dst.Balance.Add(dst.Balance, received)
	if tax.Sign() > 0 {
		l.totalSupply.Sub(l.totalSupply, tax)
		l.sink.Emit(inter.TransferEvent{From: from, To: common.Address{}, Value: new(big.Int).Set(tax)})
	}
	if poolTo {
		src.LastSellBlock = block
		src.hasSold = true
		sold := l.soldPerDay[day]
		if sold == nil {
			sold = new(big.Int)
			l.soldPerDay[day] = sold
		}
		sold.Add(sold, amount)
	}
	if poolFrom {
		dst.LastBuyBlock = block
		dst.hasBought = true
	}
	l.sink.Emit(inter.TransferEvent{From: from, To: to, Value: received})
	l.log.Trace("transfer", "from", from, "to", to, "amount", amount, "tax", tax)
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return maxx.NewConfigurationError("amount", amount, "must be a non-negative integer")
	}
	return nil
}
