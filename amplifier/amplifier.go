// Package amplifier implements the liquidity amplifier: a fixed 60-day
// deposit window in which each day carries a token allocation that is
// distributed pro rata among that day's native-currency depositors.
// Deposits are forwarded to the vault immediately; entitlements are pulled
// by the depositor once a day has closed and are realized as stake
// positions.
package amplifier

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/maxx"
)

// Amplifier error kinds.
var (
	// ErrNotStarted is returned before the launch date.
	ErrNotStarted = errors.New("liquidity amplifier has not started yet")

	// ErrWindowClosed is returned once the 60-day window is over, and by
	// configuration changes targeting an elapsed day or a passed date.
	ErrWindowClosed = errors.New("liquidity amplifier window has closed")

	// ErrAlreadyInitialized is returned on a second SetDailyAllocations.
	ErrAlreadyInitialized = errors.New("daily allocations already initialized")

	// ErrAlreadyClaimed is returned when a day's entitlement was already
	// realized by the caller.
	ErrAlreadyClaimed = errors.New("allocation for this day already claimed")

	// ErrDayNotOver is returned when claiming a day that has not fully
	// elapsed.
	ErrDayNotOver = errors.New("day has not finished yet")
)

// StakeCreator is the slice of the stake engine the amplifier needs.
type StakeCreator interface {
	StakeFor(funder, owner common.Address, durationDays uint64, amount *big.Int) (uint64, error)
}

// TokenLedger is the slice of the ledger the amplifier needs.
type TokenLedger interface {
	BalanceOf(addr common.Address) *big.Int
}

// day is the per-day deposit book.
type day struct {
	allocation *big.Int
	total      *big.Int
	deposits   map[common.Address]*big.Int
	claimed    map[common.Address]bool
	depositors []common.Address
}

// Engine is the liquidity amplifier. Not safe for concurrent use; the host
// serializes all operations.
type Engine struct {
	rules maxx.AmplifierRules
	env   inter.Env
	roles inter.RoleChecker
	sink  inter.Sink
	log   log.Logger

	ledger TokenLedger
	stake  StakeCreator
	bank   inter.NativeLedger

	// nfts and genesis identify the MaxxGenesis collection; holders are
	// reported through HoldsGenesis for host-side deposit perks.
	nfts    inter.NFTRegistry
	genesis common.Address

	// addr is the engine's token custody account; the vault receives all
	// native deposits.
	addr  common.Address
	vault common.Address

	launchDate  inter.Timestamp
	initialized bool
	days        [maxx.AmplifierDays]*day

	referralCredit map[common.Address]*big.Int
}

// Config carries the construction parameters of the amplifier engine.
type Config struct {
	Rules      maxx.AmplifierRules
	Env        inter.Env
	Roles      inter.RoleChecker
	Sink       inter.Sink
	Ledger     TokenLedger
	Stake      StakeCreator
	Bank       inter.NativeLedger
	Address    common.Address
	Vault      common.Address
	LaunchDate inter.Timestamp
}

// New creates an amplifier engine.
func New(cfg Config) *Engine {
	e := &Engine{
		rules:          cfg.Rules,
		env:            cfg.Env,
		roles:          cfg.Roles,
		sink:           cfg.Sink,
		log:            log.New("module", "amplifier"),
		ledger:         cfg.Ledger,
		stake:          cfg.Stake,
		bank:           cfg.Bank,
		addr:           cfg.Address,
		vault:          cfg.Vault,
		launchDate:     cfg.LaunchDate,
		referralCredit: make(map[common.Address]*big.Int),
	}
	for i := range e.days {
		e.days[i] = &day{
			allocation: new(big.Int),
			total:      new(big.Int),
			deposits:   make(map[common.Address]*big.Int),
			claimed:    make(map[common.Address]bool),
		}
	}
	return e
}

// Address returns the engine's token custody account.
func (e *Engine) Address() common.Address {
	return e.addr
}

// SetDailyAllocations initializes the 60 per-day token allocations. It can
// run exactly once and requires exactly 60 entries. Owner only.
func (e *Engine) SetDailyAllocations(caller common.Address, allocations []*big.Int) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	if e.initialized {
		return ErrAlreadyInitialized
	}
	if len(allocations) != maxx.AmplifierDays {
		return maxx.NewConfigurationError("dailyAllocations", len(allocations), "must contain exactly 60 entries")
	}
	for i, a := range allocations {
		if a == nil || a.Sign() < 0 {
			return maxx.NewConfigurationError("dailyAllocations", i, "allocation must be a non-negative integer")
		}
	}
	for i, a := range allocations {
		e.days[i].allocation = new(big.Int).Set(a)
	}
	e.initialized = true
	e.log.Info("daily allocations initialized")
	return nil
}

// ChangeDailyAllocation replaces a single day's allocation. Owner only;
// fails once the target day has started.
func (e *Engine) ChangeDailyAllocation(caller common.Address, dayIndex uint64, amount *big.Int) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	if dayIndex >= maxx.AmplifierDays {
		return maxx.NewConfigurationError("dayIndex", dayIndex, "must be below 60")
	}
	if e.env.Now() >= e.launchDate.AddDays(dayIndex) {
		return ErrWindowClosed
	}
	if amount == nil || amount.Sign() < 0 {
		return maxx.NewConfigurationError("allocation", amount, "must be a non-negative integer")
	}
	e.days[dayIndex].allocation = new(big.Int).Set(amount)
	return nil
}

// ChangeLaunchDate moves the launch. Owner only; fails if the current
// launch already passed or the new date lies in the past.
func (e *Engine) ChangeLaunchDate(caller common.Address, t inter.Timestamp) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	if e.env.Now() >= e.launchDate || t < e.env.Now() {
		return ErrWindowClosed
	}
	e.launchDate = t
	return nil
}

// SetStakeAddress rewires the stake engine handle. Owner only, and only
// before launch.
func (e *Engine) SetStakeAddress(caller common.Address, stake StakeCreator) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	if e.env.Now() >= e.launchDate {
		return ErrWindowClosed
	}
	e.stake = stake
	return nil
}

// SetMaxxGenesis wires the MaxxGenesis NFT collection. Owner only, and only
// before launch.
func (e *Engine) SetMaxxGenesis(caller common.Address, nfts inter.NFTRegistry, collection common.Address) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	if e.env.Now() >= e.launchDate {
		return ErrWindowClosed
	}
	e.nfts = nfts
	e.genesis = collection
	return nil
}

// MaxxGenesis returns the wired MaxxGenesis collection address.
func (e *Engine) MaxxGenesis() common.Address {
	return e.genesis
}

// HoldsGenesis reports whether account holds a MaxxGenesis NFT. False when
// no collection is wired.
func (e *Engine) HoldsGenesis(account common.Address) bool {
	return e.nfts != nil && e.nfts.Holds(e.genesis, account)
}

// CurrentDay returns the running day index of the window.
func (e *Engine) CurrentDay() (uint64, error) {
	now := e.env.Now()
	if now < e.launchDate {
		return 0, ErrNotStarted
	}
	d := now.DaysSince(e.launchDate)
	if d >= maxx.AmplifierDays {
		return 0, ErrWindowClosed
	}
	return d, nil
}

// Deposit records a native-currency deposit against the current day and
// forwards the funds to the vault.
func (e *Engine) Deposit(caller common.Address, value *big.Int) error {
	return e.DepositWithReferral(caller, value, common.Address{})
}

// DepositWithReferral is Deposit plus a referral credit for a valid
// non-self referrer, proportional to the deposited value.
func (e *Engine) DepositWithReferral(caller common.Address, value *big.Int, referrer common.Address) error {
	d, err := e.CurrentDay()
	if err != nil {
		return err
	}
	if value == nil || value.Sign() <= 0 {
		return maxx.NewConfigurationError("deposit", value, "must be a positive integer")
	}
	if err := e.bank.Transfer(caller, e.vault, value); err != nil {
		return err
	}

	book := e.days[d]
	dep := book.deposits[caller]
	if dep == nil {
		dep = new(big.Int)
		book.deposits[caller] = dep
		book.depositors = append(book.depositors, caller)
	}
	dep.Add(dep, value)
	book.total.Add(book.total, value)

	if referrer != (common.Address{}) && referrer != caller {
		credit := new(big.Int).Mul(value, new(big.Int).SetUint64(e.rules.ReferralBonusBps))
		credit.Div(credit, big.NewInt(maxx.BasisPoints))
		earned := e.referralCredit[referrer]
		if earned == nil {
			earned = new(big.Int)
			e.referralCredit[referrer] = earned
		}
		earned.Add(earned, credit)
	}

	e.sink.Emit(inter.DepositEvent{Account: caller, Day: d, Amount: new(big.Int).Set(value), Referrer: referrer})
	e.log.Debug("deposit", "day", d, "account", caller, "value", value)
	return nil
}

// Entitlement returns the caller's share of a day's allocation:
// allocation * deposit / totalDeposited. A day with no deposits yields
// zero entitlement. The returned value is a copy.
func (e *Engine) Entitlement(account common.Address, dayIndex uint64) *big.Int {
	if dayIndex >= maxx.AmplifierDays {
		return new(big.Int)
	}
	book := e.days[dayIndex]
	dep := book.deposits[account]
	if dep == nil || book.total.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(book.allocation, dep)
	return out.Div(out, book.total)
}

// ClaimDay realizes the caller's entitlement for a fully elapsed day as a
// stake position funded from the amplifier's token custody. A zero
// entitlement claims successfully as a no-op.
func (e *Engine) ClaimDay(caller common.Address, dayIndex uint64) (*big.Int, error) {
	if e.env.Now() < e.launchDate {
		return nil, ErrNotStarted
	}
	if dayIndex >= maxx.AmplifierDays {
		return nil, maxx.NewConfigurationError("dayIndex", dayIndex, "must be below 60")
	}
	if e.env.Now() < e.launchDate.AddDays(dayIndex+1) {
		return nil, ErrDayNotOver
	}
	book := e.days[dayIndex]
	if book.claimed[caller] {
		return nil, ErrAlreadyClaimed
	}

	amount := e.Entitlement(caller, dayIndex)
	if amount.Sign() > 0 {
		if _, err := e.stake.StakeFor(e.addr, caller, e.rules.ClaimStakeDays, amount); err != nil {
			return nil, err
		}
	}
	book.claimed[caller] = true
	e.sink.Emit(inter.AllocationClaimEvent{Account: caller, Day: dayIndex, Amount: new(big.Int).Set(amount)})
	return amount, nil
}

// CustodyBalance returns the token balance left in amplifier custody, the
// funding source of every remaining entitlement.
func (e *Engine) CustodyBalance() *big.Int {
	return e.ledger.BalanceOf(e.addr)
}

// DailyDeposits returns the total native value deposited on a day. The
// returned value is a copy.
func (e *Engine) DailyDeposits(dayIndex uint64) *big.Int {
	if dayIndex >= maxx.AmplifierDays {
		return new(big.Int)
	}
	return new(big.Int).Set(e.days[dayIndex].total)
}

// DailyAllocation returns the token allocation of a day. The returned
// value is a copy.
func (e *Engine) DailyAllocation(dayIndex uint64) *big.Int {
	if dayIndex >= maxx.AmplifierDays {
		return new(big.Int)
	}
	return new(big.Int).Set(e.days[dayIndex].allocation)
}

// Depositors returns the addresses that deposited on a day, in first-seen
// order.
func (e *Engine) Depositors(dayIndex uint64) []common.Address {
	if dayIndex >= maxx.AmplifierDays {
		return nil
	}
	out := make([]common.Address, len(e.days[dayIndex].depositors))
	copy(out, e.days[dayIndex].depositors)
	return out
}

// ReferralCredit returns the accumulated referral credit of addr. The
// returned value is a copy.
func (e *Engine) ReferralCredit(addr common.Address) *big.Int {
	if v := e.referralCredit[addr]; v != nil {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}
