// Package claim implements the one-time Merkle airdrop: eligibility is
// proven against a precomputed tree root, a successful claim is realized as
// a stake position, referrers earn a bonus stake from the claim custody
// pool, and claims made before the staking launch are queued and migrated
// in batches afterwards.
package claim

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/maxx"
	"github.com/MaxxFinance/maxx-finance/merkle"
)

// Claim engine error kinds.
var (
	// ErrNotStarted is returned before the claim launch date, or by
	// migration before the staking launch.
	ErrNotStarted = errors.New("free claim has not started yet")

	// ErrAlreadyClaimed is returned on a second claim by the same address.
	ErrAlreadyClaimed = errors.New("address has already claimed")

	// ErrInvalidProof is returned when the Merkle proof does not verify.
	ErrInvalidProof = errors.New("invalid merkle proof")

	// ErrInsufficientClaimBalance is returned when the claim custody pool
	// cannot cover the claim and its referral bonus.
	ErrInsufficientClaimBalance = errors.New("claim pool balance too low")
)

// StakeCreator is the slice of the stake engine the claim engine needs.
type StakeCreator interface {
	StakeFor(funder, owner common.Address, durationDays uint64, amount *big.Int) (uint64, error)
	Launched() bool
}

// TokenLedger is the slice of the ledger the claim engine needs.
type TokenLedger interface {
	TransferFrom(caller, from, to common.Address, amount *big.Int) error
	BalanceOf(addr common.Address) *big.Int
}

// PendingClaim is a claim made before the staking launch, queued for
// migration.
type PendingClaim struct {
	Account  common.Address
	Amount   *big.Int
	Referrer common.Address
}

// Engine is the airdrop claim engine. Not safe for concurrent use; the
// host serializes all operations.
type Engine struct {
	rules maxx.ClaimRules
	env   inter.Env
	roles inter.RoleChecker
	sink  inter.Sink
	log   log.Logger

	ledger TokenLedger
	stake  StakeCreator

	// addr is the engine's custody account holding the allocated claim
	// pool on the ledger.
	addr common.Address

	merkleRoot common.Hash
	launchDate inter.Timestamp

	hasClaimed     map[common.Address]bool
	referralEarned map[common.Address]*big.Int
	pending        []PendingClaim
}

// Config carries the construction parameters of the claim engine.
type Config struct {
	Rules      maxx.ClaimRules
	Env        inter.Env
	Roles      inter.RoleChecker
	Sink       inter.Sink
	Ledger     TokenLedger
	Stake      StakeCreator
	Address    common.Address
	LaunchDate inter.Timestamp
	MerkleRoot common.Hash
}

// New creates a claim engine.
func New(cfg Config) *Engine {
	return &Engine{
		rules:          cfg.Rules,
		env:            cfg.Env,
		roles:          cfg.Roles,
		sink:           cfg.Sink,
		log:            log.New("module", "claim"),
		ledger:         cfg.Ledger,
		stake:          cfg.Stake,
		addr:           cfg.Address,
		merkleRoot:     cfg.MerkleRoot,
		launchDate:     cfg.LaunchDate,
		hasClaimed:     make(map[common.Address]bool),
		referralEarned: make(map[common.Address]*big.Int),
	}
}

// Address returns the engine's custody account.
func (e *Engine) Address() common.Address {
	return e.addr
}

// SetMerkleRoot replaces the claim tree root. Owner only.
func (e *Engine) SetMerkleRoot(caller common.Address, root common.Hash) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	e.merkleRoot = root
	e.log.Info("merkle root set", "root", root)
	return nil
}

// UpdateLaunchDate moves the claim launch. Owner only, and only while the
// current launch date has not passed.
func (e *Engine) UpdateLaunchDate(caller common.Address, t inter.Timestamp) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	if e.env.Now() >= e.launchDate {
		return maxx.NewConfigurationError("launchDate", t.Unix(), "claim launch has already occurred")
	}
	e.launchDate = t
	return nil
}

// AllocateMaxx funds the claim pool: it pulls amount from the caller's
// approved ledger balance into claim custody. Owner only.
func (e *Engine) AllocateMaxx(caller common.Address, amount *big.Int) error {
	if !e.roles.HasRole(inter.RoleOwner, caller) {
		return inter.ErrUnauthorized
	}
	return e.ledger.TransferFrom(e.addr, caller, e.addr, amount)
}

// VerifyMerkleLeaf checks a claimant's eligibility proof against the
// current root.
func (e *Engine) VerifyMerkleLeaf(account common.Address, amount *big.Int, proof []common.Hash) bool {
	return merkle.VerifyLeaf(account, amount, proof, e.merkleRoot)
}

// HasClaimed reports whether the address already claimed.
func (e *Engine) HasClaimed(addr common.Address) bool {
	return e.hasClaimed[addr]
}

// ReferralEarned returns the total referral bonus earned by addr. The
// returned value is a copy.
func (e *Engine) ReferralEarned(addr common.Address) *big.Int {
	if v := e.referralEarned[addr]; v != nil {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// PendingCount returns the number of queued pre-launch claims.
func (e *Engine) PendingCount() int {
	return len(e.pending)
}

// FreeClaim redeems the caller's airdrop entitlement. The amount and proof
// must match a leaf of the claim tree. If the staking launch has passed the
// entitlement is staked immediately (with a referral bonus stake for a
// valid non-self referrer, funded from the claim pool); otherwise the claim
// is queued for migration.
func (e *Engine) FreeClaim(caller common.Address, amount *big.Int, proof []common.Hash, referrer common.Address) error {
	if e.env.Now() < e.launchDate {
		return ErrNotStarted
	}
	if e.hasClaimed[caller] {
		return ErrAlreadyClaimed
	}
	if !merkle.VerifyLeaf(caller, amount, proof, e.merkleRoot) {
		return ErrInvalidProof
	}
	if referrer == caller {
		// self-referral earns nothing
		referrer = common.Address{}
	}
	needed := new(big.Int).Set(amount)
	if referrer != (common.Address{}) {
		needed.Add(needed, e.referralBonus(amount))
	}
	if e.ledger.BalanceOf(e.addr).Cmp(needed) < 0 {
		return ErrInsufficientClaimBalance
	}

	e.hasClaimed[caller] = true
	if !e.stake.Launched() {
		e.pending = append(e.pending, PendingClaim{
			Account:  caller,
			Amount:   new(big.Int).Set(amount),
			Referrer: referrer,
		})
		e.sink.Emit(inter.ClaimEvent{Account: caller, Amount: new(big.Int).Set(amount)})
		return nil
	}
	if err := e.realize(caller, amount, referrer); err != nil {
		// roll back the claim mark so the operation is all-or-nothing
		e.hasClaimed[caller] = false
		return err
	}
	e.sink.Emit(inter.ClaimEvent{Account: caller, Amount: new(big.Int).Set(amount)})
	return nil
}

// MigrateUnstakedFreeClaims converts up to batchSize queued pre-launch
// claims into stake positions. Callable only after the staking launch;
// processed entries are removed, so repeated calls drain the queue without
// double-processing.
func (e *Engine) MigrateUnstakedFreeClaims(batchSize int) (int, error) {
	if !e.stake.Launched() {
		return 0, ErrNotStarted
	}
	processed := 0
	for processed < batchSize && len(e.pending) > 0 {
		pc := e.pending[0]
		if err := e.realize(pc.Account, pc.Amount, pc.Referrer); err != nil {
			return processed, err
		}
		e.pending = e.pending[1:]
		processed++
	}
	e.log.Info("migrated pending claims", "processed", processed, "remaining", len(e.pending))
	return processed, nil
}

// realize creates the claimant's stake and, when a referrer is set, the
// referrer's bonus stake out of the claim pool.
func (e *Engine) realize(account common.Address, amount *big.Int, referrer common.Address) error {
	if _, err := e.stake.StakeFor(e.addr, account, e.rules.DefaultStakeDays, amount); err != nil {
		return err
	}
	if referrer == (common.Address{}) {
		return nil
	}
	bonus := e.referralBonus(amount)
	if bonus.Sign() == 0 {
		return nil
	}
	if _, err := e.stake.StakeFor(e.addr, referrer, e.rules.DefaultStakeDays, bonus); err != nil {
		return err
	}
	earned := e.referralEarned[referrer]
	if earned == nil {
		earned = new(big.Int)
		e.referralEarned[referrer] = earned
	}
	earned.Add(earned, bonus)
	return nil
}

func (e *Engine) referralBonus(amount *big.Int) *big.Int {
	bonus := new(big.Int).Mul(amount, new(big.Int).SetUint64(e.rules.ReferralBonusBps))
	return bonus.Div(bonus, big.NewInt(maxx.BasisPoints))
}
