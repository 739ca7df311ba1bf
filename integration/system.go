// Package integration assembles the Maxx Finance engines into a running
// system: one rules preset, one environment, one event sink, and the four
// engines wired per the protocol's ownership model. A single mutex
// serializes every operation, so the engines themselves stay lock-free.
//
// Usage:
//
//	sys := integration.FakeNetSystem(owner, vault, launch)
//	err := sys.Do(func() error {
//		return sys.Ledger.Transfer(vault, user, amount)
//	})
package integration

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/MaxxFinance/maxx-finance/amplifier"
	"github.com/MaxxFinance/maxx-finance/claim"
	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/ledger"
	"github.com/MaxxFinance/maxx-finance/maxx"
	"github.com/MaxxFinance/maxx-finance/stake"
)

// Well-known custody addresses of the engines. They live outside the user
// address space the way the original deployment's contract addresses did.
var (
	// StakeEngineAddress custodies staked principals and holds the minter
	// capability for interest payouts.
	StakeEngineAddress = common.HexToAddress("0xd100a01e00000000000000000000000000000001")

	// ClaimEngineAddress custodies the allocated airdrop pool.
	ClaimEngineAddress = common.HexToAddress("0xd100a01e00000000000000000000000000000002")

	// AmplifierAddress custodies the amplifier's daily token allocations.
	AmplifierAddress = common.HexToAddress("0xd100a01e00000000000000000000000000000003")
)

// Config carries the deployment parameters of a System.
type Config struct {
	Rules maxx.Rules
	Env   inter.Env
	Sink  inter.Sink

	// Owner is granted RoleOwner on every engine.
	Owner common.Address

	// Vault receives the initial supply and the amplifier's native deposits.
	Vault common.Address

	// LaunchDate gates staking, claiming and the amplifier window alike.
	LaunchDate inter.Timestamp

	// Payment selects the marketplace payment asset.
	Payment stake.PaymentAsset
}

// System is the wired engine set. All access goes through Do (or an
// equivalent external lock); the engines are not individually safe for
// concurrent use.
type System struct {
	mu sync.Mutex

	Rules maxx.Rules
	Env   inter.Env
	Roles *inter.RoleSet
	Sink  inter.Sink
	Bank  *inter.NativeBank
	NFTs  *inter.NFTSet

	Ledger    *ledger.Ledger
	Stake     *stake.Engine
	Claim     *claim.Engine
	Amplifier *amplifier.Engine
}

// NewSystem wires a System from cfg. The wiring mirrors the original
// deployment scripts: engine custody accounts are allowlisted so protocol
// transfers bypass tax and limits, the stake engine gets the minter
// capability, and the claim and amplifier engines are authorized to create
// stakes out of their custody.
func NewSystem(cfg Config) *System {
	sink := cfg.Sink
	if sink == nil {
		sink = inter.NopSink{}
	}
	roles := inter.NewRoleSet(cfg.Owner)
	roles.Grant(inter.RoleMinter, StakeEngineAddress)

	bank := inter.NewNativeBank()
	nfts := inter.NewNFTSet()

	led := ledger.New(cfg.Rules.Ledger, cfg.Env, roles, sink, cfg.Vault)

	stk := stake.New(stake.Config{
		Rules:      cfg.Rules.Stake,
		Env:        cfg.Env,
		Roles:      roles,
		Sink:       sink,
		Ledger:     led,
		Bank:       bank,
		NFTs:       nfts,
		Address:    StakeEngineAddress,
		LaunchDate: cfg.LaunchDate,
		Payment:    cfg.Payment,
	})

	clm := claim.New(claim.Config{
		Rules:      cfg.Rules.Claim,
		Env:        cfg.Env,
		Roles:      roles,
		Sink:       sink,
		Ledger:     led,
		Stake:      stk,
		Address:    ClaimEngineAddress,
		LaunchDate: cfg.LaunchDate,
	})

	amp := amplifier.New(amplifier.Config{
		Rules:      cfg.Rules.Amplifier,
		Env:        cfg.Env,
		Roles:      roles,
		Sink:       sink,
		Ledger:     led,
		Stake:      stk,
		Bank:       bank,
		Address:    AmplifierAddress,
		Vault:      cfg.Vault,
		LaunchDate: cfg.LaunchDate,
	})

	// Protocol accounts never pay tax and never hit the whale or daily
	// limits; custody flows must move exact amounts. These calls can only
	// fail on a miswired owner, which makes the whole system unusable.
	for _, engine := range []common.Address{StakeEngineAddress, ClaimEngineAddress, AmplifierAddress} {
		if err := led.Allow(cfg.Owner, engine); err != nil {
			panic(err)
		}
	}
	for _, funder := range []common.Address{ClaimEngineAddress, AmplifierAddress} {
		if err := stk.AuthorizeFunder(cfg.Owner, funder); err != nil {
			panic(err)
		}
	}

	return &System{
		Rules:     cfg.Rules,
		Env:       cfg.Env,
		Roles:     roles,
		Sink:      sink,
		Bank:      bank,
		NFTs:      nfts,
		Ledger:    led,
		Stake:     stk,
		Claim:     clm,
		Amplifier: amp,
	}
}

// Do runs fn under the system lock.
func (s *System) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// FakeNetSystem wires a System with the fake-net rules and a manually
// driven clock, for tests and local simulation. The returned FakeEnv is the
// system's Env.
func FakeNetSystem(owner, vault common.Address, launch inter.Timestamp) (*System, *inter.FakeEnv) {
	env := inter.NewFakeEnv(launch)
	sys := NewSystem(Config{
		Rules:      maxx.FakeNetRules(),
		Env:        env,
		Sink:       &inter.MemorySink{},
		Owner:      owner,
		Vault:      vault,
		LaunchDate: launch,
		Payment:    stake.PayNative,
	})
	return sys, env
}
