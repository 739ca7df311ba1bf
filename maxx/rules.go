// Package maxx defines the protocol rules and configuration parameters for
// the Maxx Finance token economy.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Ledger rules for transfer controls (tax, whale limit, daily sell
//     limit, block-gap anti-bot rule)
//   - Stake rules for the interest/penalty arithmetic and duration bounds
//   - Claim rules for the Merkle airdrop
//   - Amplifier rules for the 60-day deposit window
//
// The Rules type serves as the central configuration structure that defines
// all economy-critical parameters for a given deployment.
package maxx

import (
	"encoding/json"
	"math/big"
)

// Network identification constants.
const (
	// MainNetworkID is the chain ID of the production deployment (Polygon).
	MainNetworkID uint64 = 137

	// TestNetworkID is the chain ID of the test deployment (Mumbai).
	TestNetworkID uint64 = 80001

	// FakeNetworkID is the chain ID for local/fake environments used in
	// testing.
	FakeNetworkID uint64 = 31337
)

// Protocol-wide constants. These are fixed by the accounting formulas and
// are not per-network tunables.
const (
	// BasisPoints is the denominator of every bps-expressed percentage.
	BasisPoints = 10000

	// MinStakeDays is the shortest permitted stake commitment.
	MinStakeDays uint64 = 1

	// MaxStakeDays is the longest permitted stake commitment and the
	// "max share" ceiling.
	MaxStakeDays uint64 = 3333

	// BaseStakeDays is the baseline duration of the interest formula:
	// a full-term 365-day stake earns shares/InterestDivisor.
	BaseStakeDays uint64 = 365

	// InterestDivisor is the precision scaling constant of the interest
	// formula. Full-term interest equals shares*durationDays/365/10.
	InterestDivisor uint64 = 10

	// LatePenaltyWindowDays is the span over which the late-unstake penalty
	// ramps from zero to the full payout.
	LatePenaltyWindowDays uint64 = 365

	// AmplifierDays is the length of the liquidity amplifier deposit window.
	AmplifierDays = 60

	// TokenDecimals is the number of base-unit decimals of the token.
	TokenDecimals = 18
)

// tokenUnit is 10^TokenDecimals.
var tokenUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil)

// Tokens converts a whole-token count to base units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), tokenUnit)
}

// LedgerRules are the transfer-control parameters of the token ledger.
type LedgerRules struct {
	// InitialSupply is minted to the vault at ledger construction.
	InitialSupply *big.Int

	// TransferTaxBps is the starting transfer tax in basis points, applied
	// to pool-bound transfers and burned.
	TransferTaxBps uint64

	// MinTransferTaxBps and MaxTransferTaxBps bound every later tax change.
	MinTransferTaxBps uint64
	MaxTransferTaxBps uint64

	// WhaleLimit is the maximum single-transfer size for non-exempt,
	// non-pool-bound transfers.
	WhaleLimit *big.Int

	// MinWhaleLimit bounds later whale-limit changes from below.
	MinWhaleLimit *big.Int

	// GlobalDailySellLimit caps the aggregate volume moving into pools per
	// protocol day.
	GlobalDailySellLimit *big.Int

	// MinGlobalDailySellLimit bounds later daily-limit changes from below.
	MinGlobalDailySellLimit *big.Int

	// BlocksBetweenTransfers is the anti-bot block gap between a buy and a
	// subsequent sell (and vice versa). At most MaxBlocksBetweenTransfers.
	BlocksBetweenTransfers uint64
}

// MaxBlocksBetweenTransfers is the hard ceiling of the block-gap rule.
const MaxBlocksBetweenTransfers uint64 = 5

// StakeRules are the stake engine parameters.
type StakeRules struct {
	// NftBonusCapBps caps the cumulative NFT share bonus.
	NftBonusCapBps uint64
}

// ClaimRules are the airdrop claim engine parameters.
type ClaimRules struct {
	// DefaultStakeDays is the duration of the stake created for a claim.
	DefaultStakeDays uint64

	// ReferralBonusBps is the referrer's bonus stake, as bps of the claimed
	// amount, funded from the claim custody pool.
	ReferralBonusBps uint64
}

// AmplifierRules are the liquidity amplifier parameters.
type AmplifierRules struct {
	// ReferralBonusBps is the referral credit recorded per deposit, as bps
	// of the deposited native value.
	ReferralBonusBps uint64

	// ClaimStakeDays is the duration of the stake created when a day's
	// entitlement is claimed.
	ClaimStakeDays uint64
}

// Rules describes the complete configuration of a Maxx Finance deployment.
//
// Note: Copy() must deep-copy every *big.Int field to avoid shared state.
type Rules struct {
	Name      string
	NetworkID uint64

	Ledger    LedgerRules
	Stake     StakeRules
	Claim     ClaimRules
	Amplifier AmplifierRules
}

// MainNetRules returns the production configuration: 5% transfer tax,
// 1M-token whale limit, 1B-token daily sell limit, 100B initial supply.
// These are the values the original deployment was constructed with.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Ledger:    DefaultLedgerRules(),
		Stake:     DefaultStakeRules(),
		Claim:     DefaultClaimRules(),
		Amplifier: DefaultAmplifierRules(),
	}
}

// TestNetRules returns the testnet configuration. It mirrors mainnet so
// that rehearsals exercise realistic limits.
func TestNetRules() Rules {
	r := MainNetRules()
	r.Name = "test"
	r.NetworkID = TestNetworkID
	return r
}

// FakeNetRules returns the configuration for local/fake environments:
// mainnet economics with the anti-bot block gap disabled so single-block
// test flows are not rejected.
func FakeNetRules() Rules {
	r := MainNetRules()
	r.Name = "fake"
	r.NetworkID = FakeNetworkID
	r.Ledger.BlocksBetweenTransfers = 0
	return r
}

// DefaultLedgerRules returns the mainnet transfer-control parameters.
func DefaultLedgerRules() LedgerRules {
	return LedgerRules{
		InitialSupply:           Tokens(100_000_000_000), // 100B tokens
		TransferTaxBps:          500,                     // 5%
		MinTransferTaxBps:       0,
		MaxTransferTaxBps:       2000, // 20%
		WhaleLimit:              Tokens(1_000_000),
		MinWhaleLimit:           Tokens(1_000_000),
		GlobalDailySellLimit:    Tokens(1_000_000_000),
		MinGlobalDailySellLimit: Tokens(1_000_000_000),
		BlocksBetweenTransfers:  1,
	}
}

// DefaultStakeRules returns the mainnet stake parameters.
func DefaultStakeRules() StakeRules {
	return StakeRules{
		NftBonusCapBps: 5000, // cumulative NFT uplift capped at +50%
	}
}

// DefaultClaimRules returns the mainnet claim parameters.
func DefaultClaimRules() ClaimRules {
	return ClaimRules{
		DefaultStakeDays: 365,
		ReferralBonusBps: 1000, // 10%
	}
}

// DefaultAmplifierRules returns the mainnet amplifier parameters.
func DefaultAmplifierRules() AmplifierRules {
	return AmplifierRules{
		ReferralBonusBps: 1000, // 10%
		ClaimStakeDays:   365,
	}
}

// Copy creates a deep copy of Rules. Rules contains *big.Int fields that
// would be shared by a shallow copy.
func (r Rules) Copy() Rules {
	cp := r
	cp.Ledger.InitialSupply = new(big.Int).Set(r.Ledger.InitialSupply)
	cp.Ledger.WhaleLimit = new(big.Int).Set(r.Ledger.WhaleLimit)
	cp.Ledger.MinWhaleLimit = new(big.Int).Set(r.Ledger.MinWhaleLimit)
	cp.Ledger.GlobalDailySellLimit = new(big.Int).Set(r.Ledger.GlobalDailySellLimit)
	cp.Ledger.MinGlobalDailySellLimit = new(big.Int).Set(r.Ledger.MinGlobalDailySellLimit)
	return cp
}

// String returns a JSON representation of Rules for debugging and logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
