// Package stake implements the stake position lifecycle of the Maxx
// Finance economy: share derivation, interest and penalty computation,
// restake, max-share, ownership transfer, the NFT share bonus, and the
// stake marketplace.
//
// The engine owns all Position records and a custody account on the token
// ledger. Principals are custodied by transfer on stake and returned on
// unstake; interest above the custodied principal is minted at payout time
// and penalty shortfalls are burned, so the custody balance always equals
// the sum of live principals. The engine therefore holds the minter
// capability on the ledger.
package stake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/maxx"
)

// TokenLedger is the slice of the ledger the stake engine needs. The
// concrete ledger.Ledger satisfies it.
type TokenLedger interface {
	Transfer(caller, to common.Address, amount *big.Int) error
	TransferFrom(caller, from, to common.Address, amount *big.Int) error
	Mint(caller, to common.Address, amount *big.Int) error
	Burn(caller, from common.Address, amount *big.Int) error
	BalanceOf(addr common.Address) *big.Int
}

// PaymentAsset selects the marketplace payment medium.
type PaymentAsset int

const (
	// PayNative prices listings in the native currency (MATIC equivalent).
	PayNative PaymentAsset = iota
	// PayToken prices listings in the ledger token.
	PayToken
)

// Engine is the stake engine. Not safe for concurrent use; the host
// serializes all operations.
type Engine struct {
	rules maxx.StakeRules
	env   inter.Env
	roles inter.RoleChecker
	sink  inter.Sink
	log   log.Logger

	ledger TokenLedger
	bank   inter.NativeLedger
	nfts   inter.NFTRegistry

	// addr is the engine's custody account on the ledger.
	addr       common.Address
	launchDate inter.Timestamp

	idCounter uint64
	positions map[uint64]*Position

	// approvals[id][spender] permits transferStakeFrom and listing by a
	// third party.
	approvals map[uint64]map[common.Address]bool

	listings map[uint64]*listing
	payment  PaymentAsset

	// nftBonuses maps a qualifying collection to its share uplift in bps.
	nftBonuses map[common.Address]uint64

	// funders are engine addresses (claim, amplifier) allowed to create
	// stakes on behalf of users out of their own custody.
	funders map[common.Address]bool
}

// Config carries the construction parameters of the stake engine.
type Config struct {
	Rules      maxx.StakeRules
	Env        inter.Env
	Roles      inter.RoleChecker
	Sink       inter.Sink
	Ledger     TokenLedger
	Bank       inter.NativeLedger
	NFTs       inter.NFTRegistry
	Address    common.Address
	LaunchDate inter.Timestamp
	Payment    PaymentAsset
}

// New creates a stake engine.
func New(cfg Config) *Engine {
	return &Engine{
		rules:      cfg.Rules,
		env:        cfg.Env,
		roles:      cfg.Roles,
		sink:       cfg.Sink,
		log:        log.New("module", "stake"),
		ledger:     cfg.Ledger,
		bank:       cfg.Bank,
		nfts:       cfg.NFTs,
		addr:       cfg.Address,
		launchDate: cfg.LaunchDate,
		positions:  make(map[uint64]*Position),
		approvals:  make(map[uint64]map[common.Address]bool),
		listings:   make(map[uint64]*listing),
		payment:    cfg.Payment,
		nftBonuses: make(map[common.Address]uint64),
		funders:    make(map[common.Address]bool),
	}
}

// Address returns the engine's custody account.
func (e *Engine) Address() common.Address {
	return e.addr
}

// Launched reports whether the staking launch date has passed.
func (e *Engine) Launched() bool {
	return e.env.Now() >= e.launchDate
}

// DaysSinceLaunch returns the number of whole days since launch.
func (e *Engine) DaysSinceLaunch() uint64 {
	return e.env.Now().DaysSince(e.launchDate)
}

// IDCounter returns the next stake id to be assigned.
func (e *Engine) IDCounter() uint64 {
	return e.idCounter
}

// Position returns a copy of the position with the given id.
func (e *Engine) Position(id uint64) (Position, error) {
	p := e.positions[id]
	if p == nil {
		return Position{}, ErrUnknownStake
	}
	return p.copyOf(), nil
}

// Stake locks amount for durationDays. The principal is pulled from the
// caller's approved ledger balance into engine custody; shares are derived
// once from amount, duration and the caller's qualifying NFT holdings.
func (e *Engine) Stake(caller common.Address, durationDays uint64, amount *big.Int) (uint64, error) {
	if !e.Launched() {
		return 0, ErrNotStarted
	}
	if durationDays < maxx.MinStakeDays || durationDays > maxx.MaxStakeDays {
		return 0, ErrInvalidDuration
	}
	if err := e.ledger.TransferFrom(e.addr, caller, e.addr, amount); err != nil {
		return 0, err
	}
	return e.create(caller, durationDays, amount), nil
}

// StakeFor creates a stake owned by owner, funded from the calling engine's
// own custody balance. Only registered funders (the claim and amplifier
// engines) may call it.
func (e *Engine) StakeFor(funder, owner common.Address, durationDays uint64, amount *big.Int) (uint64, error) {
	if !e.funders[funder] {
		return 0, inter.ErrUnauthorized
	}
	if durationDays < maxx.MinStakeDays || durationDays > maxx.MaxStakeDays {
		return 0, ErrInvalidDuration
	}
	if err := e.ledger.Transfer(funder, e.addr, amount); err != nil {
		return 0, err
	}
	return e.create(owner, durationDays, amount), nil
}

func (e *Engine) create(owner common.Address, durationDays uint64, amount *big.Int) uint64 {
	bonus := e.nftBonusFor(owner)
	id := e.idCounter
	e.idCounter++
	e.positions[id] = &Position{
		ID:           id,
		Owner:        owner,
		Amount:       new(big.Int).Set(amount),
		Shares:       computeShares(amount, durationDays, bonus),
		DurationDays: durationDays,
		Start:        e.env.Now(),
		NftBonusBps:  bonus,
	}
	e.sink.Emit(inter.StakeEvent{Owner: owner, DurationDays: durationDays, Amount: new(big.Int).Set(amount)})
	e.log.Debug("stake created", "id", id, "owner", owner, "days", durationDays, "amount", amount)
	return id
}

// Unstake destroys the position and pays out principal and interest net of
// any early or late penalty. The position's id is never reused.
func (e *Engine) Unstake(caller common.Address, id uint64) (*big.Int, error) {
	p, err := e.owned(caller, id)
	if err != nil {
		return nil, err
	}
	elapsed := e.env.Now().DaysSince(p.Start)
	amount := payout(p.Amount, p.Shares, p.DurationDays, elapsed)

	if err := e.settle(p.Amount, amount, caller); err != nil {
		return nil, err
	}

	delete(e.listings, id)
	delete(e.approvals, id)
	e.positions[id] = &Position{ID: id, Amount: new(big.Int), Shares: new(big.Int)}
	e.sink.Emit(inter.UnstakeEvent{ID: id, Owner: caller, Payout: new(big.Int).Set(amount)})
	e.log.Debug("unstaked", "id", id, "elapsed", elapsed, "payout", amount)
	return amount, nil
}

// settle reconciles custody against the computed payout: the returned
// principal comes out of custody, interest above it is minted, and any
// penalty shortfall is burned so custody keeps matching live principals.
func (e *Engine) settle(principal, amount *big.Int, to common.Address) error {
	switch amount.Cmp(principal) {
	case 1:
		if err := e.ledger.Transfer(e.addr, to, principal); err != nil {
			return err
		}
		return e.ledger.Mint(e.addr, to, new(big.Int).Sub(amount, principal))
	case -1:
		if err := e.ledger.Transfer(e.addr, to, amount); err != nil {
			return err
		}
		return e.ledger.Burn(e.addr, e.addr, new(big.Int).Sub(principal, amount))
	default:
		return e.ledger.Transfer(e.addr, to, amount)
	}
}

// Restake rolls a matured stake's payout, plus an optional top-up pulled
// from the caller, into a fresh term of the same duration under the same
// id. Duration is explicitly unchanged; shares are recomputed from the new
// total.
func (e *Engine) Restake(caller common.Address, id uint64, topUp *big.Int) error {
	p, err := e.owned(caller, id)
	if err != nil {
		return err
	}
	elapsed := e.env.Now().DaysSince(p.Start)
	if elapsed < p.DurationDays {
		return ErrStakeNotMatured
	}
	rolled := payout(p.Amount, p.Shares, p.DurationDays, elapsed)

	// The top-up pull is the only fallible step; it must happen before any
	// custody or supply mutation.
	newAmount := new(big.Int).Set(rolled)
	if topUp != nil && topUp.Sign() > 0 {
		if err := e.ledger.TransferFrom(e.addr, caller, e.addr, topUp); err != nil {
			return err
		}
		newAmount.Add(newAmount, topUp)
	}

	// Reconcile custody with the rolled payout in place.
	switch rolled.Cmp(p.Amount) {
	case 1:
		if err := e.ledger.Mint(e.addr, e.addr, new(big.Int).Sub(rolled, p.Amount)); err != nil {
			return err
		}
	case -1:
		if err := e.ledger.Burn(e.addr, e.addr, new(big.Int).Sub(p.Amount, rolled)); err != nil {
			return err
		}
	}

	bonus := e.nftBonusFor(caller)
	p.Amount = newAmount
	p.Shares = computeShares(newAmount, p.DurationDays, bonus)
	p.NftBonusBps = bonus
	p.Start = e.env.Now()
	e.sink.Emit(inter.StakeEvent{Owner: caller, DurationDays: p.DurationDays, Amount: new(big.Int).Set(newAmount)})
	return nil
}

// MaxShare rewrites the stake to the maximum duration without penalty,
// rolling principal plus the interest accrued so far into a fresh
// 3333-day term. Allowed at any time, matured or not; the upgrade is
// one-directional.
func (e *Engine) MaxShare(caller common.Address, id uint64) error {
	p, err := e.owned(caller, id)
	if err != nil {
		return err
	}
	elapsed := e.env.Now().DaysSince(p.Start)
	if elapsed > p.DurationDays {
		elapsed = p.DurationDays
	}
	accrued := interestFor(p.Shares, elapsed)
	if accrued.Sign() > 0 {
		if err := e.ledger.Mint(e.addr, e.addr, accrued); err != nil {
			return err
		}
	}

	bonus := e.nftBonusFor(caller)
	p.Amount = new(big.Int).Add(p.Amount, accrued)
	p.DurationDays = maxx.MaxStakeDays
	p.Shares = computeShares(p.Amount, maxx.MaxStakeDays, bonus)
	p.NftBonusBps = bonus
	p.Start = e.env.Now()
	e.sink.Emit(inter.StakeEvent{Owner: caller, DurationDays: maxx.MaxStakeDays, Amount: new(big.Int).Set(p.Amount)})
	return nil
}

// ChangeStakeName renames a stake.
func (e *Engine) ChangeStakeName(caller common.Address, id uint64, name string) error {
	p, err := e.owned(caller, id)
	if err != nil {
		return err
	}
	p.Name = name
	return nil
}

// TransferStake reassigns ownership to newOwner. Any marketplace listing
// and approvals are dropped with the old owner.
func (e *Engine) TransferStake(caller common.Address, id uint64, newOwner common.Address) error {
	p, err := e.owned(caller, id)
	if err != nil {
		return err
	}
	e.reassign(p, newOwner)
	return nil
}

// ApproveStake grants or revokes spender's right to transfer the stake.
func (e *Engine) ApproveStake(caller common.Address, id uint64, spender common.Address, approved bool) error {
	_, err := e.owned(caller, id)
	if err != nil {
		return err
	}
	if approved {
		if e.approvals[id] == nil {
			e.approvals[id] = make(map[common.Address]bool)
		}
		e.approvals[id][spender] = true
	} else {
		delete(e.approvals[id], spender)
	}
	return nil
}

// TransferStakeFrom reassigns ownership on the strength of a prior
// approval.
func (e *Engine) TransferStakeFrom(caller common.Address, id uint64, newOwner common.Address) error {
	p := e.positions[id]
	if p == nil || p.zeroed() {
		return ErrUnknownStake
	}
	if !e.approvals[id][caller] {
		return ErrNotApproved
	}
	e.reassign(p, newOwner)
	return nil
}

func (e *Engine) reassign(p *Position, newOwner common.Address) {
	p.Owner = newOwner
	delete(e.listings, p.ID)
	delete(e.approvals, p.ID)
}

// SetNftBonus configures the share uplift for holders of an NFT collection.
// Bonuses of distinct collections are additive up to the rules' cap.
func (e *Engine) SetNftBonus(caller, collection common.Address, bonusBps uint64) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	if bonusBps > e.rules.NftBonusCapBps {
		return maxx.NewConfigurationError("nftBonusBps", bonusBps, "must not exceed the NFT bonus cap")
	}
	e.nftBonuses[collection] = bonusBps
	return nil
}

// AuthorizeFunder registers an engine address allowed to call StakeFor.
func (e *Engine) AuthorizeFunder(caller, funder common.Address) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	e.funders[funder] = true
	return nil
}

// nftBonusFor sums the uplift of every qualifying collection the owner
// holds, capped by the rules.
func (e *Engine) nftBonusFor(owner common.Address) uint64 {
	var total uint64
	for collection, bps := range e.nftBonuses {
		if e.nfts != nil && e.nfts.Holds(collection, owner) {
			total += bps
		}
	}
	if total > e.rules.NftBonusCapBps {
		total = e.rules.NftBonusCapBps
	}
	return total
}

func (e *Engine) owned(caller common.Address, id uint64) (*Position, error) {
	p := e.positions[id]
	if p == nil || p.zeroed() {
		return nil, ErrUnknownStake
	}
	if p.Owner != caller {
		return nil, ErrNotOwner
	}
	return p, nil
}
