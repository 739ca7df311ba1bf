package stake

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/ledger"
	"github.com/MaxxFinance/maxx-finance/maxx"
)

var (
	owner      = common.HexToAddress("0x0001")
	vault      = common.HexToAddress("0x0002")
	alice      = common.HexToAddress("0x00a1")
	bob        = common.HexToAddress("0x00b1")
	engineAddr = common.HexToAddress("0x00e1")
)

type testRig struct {
	engine *Engine
	ledger *ledger.Ledger
	env    *inter.FakeEnv
	bank   *inter.NativeBank
	nfts   *inter.NFTSet
	sink   *inter.MemorySink
}

// newTestRig wires a stake engine against a real ledger. The engine address
// is allowlisted and holds the minter capability, matching the deployment
// wiring; alice starts funded and fully approved.
func newTestRig(t *testing.T) *testRig {
	t.Helper()
	rules := maxx.FakeNetRules()
	env := inter.NewFakeEnv(inter.Timestamp(1000 * inter.SecondsPerDay))
	sink := &inter.MemorySink{}
	roles := inter.NewRoleSet(owner)
	roles.Grant(inter.RoleMinter, engineAddr)

	led := ledger.New(rules.Ledger, env, roles, sink, vault)
	bank := inter.NewNativeBank()
	nfts := inter.NewNFTSet()

	e := New(Config{
		Rules:      rules.Stake,
		Env:        env,
		Roles:      roles,
		Sink:       sink,
		Ledger:     led,
		Bank:       bank,
		NFTs:       nfts,
		Address:    engineAddr,
		LaunchDate: env.Now(),
		Payment:    PayNative,
	})

	require.NoError(t, led.Allow(owner, engineAddr))
	require.NoError(t, led.Transfer(vault, alice, maxx.Tokens(10_000)))
	require.NoError(t, led.Approve(alice, engineAddr, maxx.Tokens(1_000_000)))
	return &testRig{engine: e, ledger: led, env: env, bank: bank, nfts: nfts, sink: sink}
}

func TestStakeLifecycle(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	// 1. Staking custodies the principal with the engine.
	id, err := r.engine.Stake(alice, 365, maxx.Tokens(1000))
	require.NoError(err)
	require.Equal(uint64(0), id)
	require.Equal(uint64(1), r.engine.IDCounter())
	require.Equal(0, r.ledger.BalanceOf(engineAddr).Cmp(maxx.Tokens(1000)))
	require.Equal(0, r.ledger.BalanceOf(alice).Cmp(maxx.Tokens(9000)))

	p, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(alice, p.Owner)
	require.Equal(uint64(365), p.DurationDays)
	require.Equal(0, p.Amount.Cmp(maxx.Tokens(1000)))

	ev, ok := r.sink.Last().(inter.StakeEvent)
	require.True(ok)
	require.Equal(alice, ev.Owner)
	require.Equal(uint64(365), ev.DurationDays)

	// 2. Unstaking at maturity pays principal plus the full committed
	// interest, to the base unit.
	r.env.AdvanceDays(365)
	want := new(big.Int).Add(p.Amount, interestFor(p.Shares, 365))
	payout, err := r.engine.Unstake(alice, id)
	require.NoError(err)
	require.Equal(0, payout.Cmp(want))
	balance := new(big.Int).Add(maxx.Tokens(9000), want)
	require.Equal(0, r.ledger.BalanceOf(alice).Cmp(balance))

	// 3. Custody is fully drained and the interest was freshly minted.
	require.Equal(int64(0), r.ledger.BalanceOf(engineAddr).Int64())

	// 4. The position is destroyed and its id is never reused.
	_, err = r.engine.Unstake(alice, id)
	require.ErrorIs(err, ErrUnknownStake)
	id2, err := r.engine.Stake(alice, 30, maxx.Tokens(10))
	require.NoError(err)
	require.Equal(uint64(1), id2)
}

func TestImmediateUnstakeForfeitsEverything(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	id, err := r.engine.Stake(alice, 365, maxx.Tokens(1000))
	require.NoError(err)

	supply := r.ledger.TotalSupply()
	payout, err := r.engine.Unstake(alice, id)
	require.NoError(err)

	// Zero days elapsed means zero payout; the forfeited principal is
	// burned out of custody.
	require.Equal(int64(0), payout.Int64())
	require.Equal(0, r.ledger.BalanceOf(alice).Cmp(maxx.Tokens(9000)))
	require.Equal(int64(0), r.ledger.BalanceOf(engineAddr).Int64())
	require.Equal(0, new(big.Int).Sub(supply, r.ledger.TotalSupply()).Cmp(maxx.Tokens(1000)))
}

func TestEarlyUnstakeMidpoint(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	id, err := r.engine.Stake(alice, 100, maxx.Tokens(1000))
	require.NoError(err)
	p, err := r.engine.Position(id)
	require.NoError(err)

	// At the midpoint the full principal comes back plus half the interest
	// accrued so far.
	r.env.AdvanceDays(50)
	accrued := interestFor(p.Shares, 50)
	want := new(big.Int).Add(maxx.Tokens(1000), new(big.Int).Div(accrued, big.NewInt(2)))

	payout, err := r.engine.Unstake(alice, id)
	require.NoError(err)
	require.Equal(0, payout.Cmp(want))
}

func TestLateUnstakeDecays(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	id, err := r.engine.Stake(alice, 30, maxx.Tokens(1000))
	require.NoError(err)

	// A year past maturity the payout has decayed to nothing.
	r.env.AdvanceDays(30 + 365)
	payout, err := r.engine.Unstake(alice, id)
	require.NoError(err)
	require.Equal(int64(0), payout.Int64())

	// The whole principal was burned, not stranded in custody.
	require.Equal(int64(0), r.ledger.BalanceOf(engineAddr).Int64())
}

func TestStakeValidation(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	// 1. Duration bounds.
	_, err := r.engine.Stake(alice, 0, maxx.Tokens(1))
	require.ErrorIs(err, ErrInvalidDuration)
	_, err = r.engine.Stake(alice, maxx.MaxStakeDays+1, maxx.Tokens(1))
	require.ErrorIs(err, ErrInvalidDuration)

	// 2. The ceiling itself is allowed.
	_, err = r.engine.Stake(alice, maxx.MaxStakeDays, maxx.Tokens(1))
	require.NoError(err)

	// 3. An unapproved staker is rejected by the ledger.
	_, err = r.engine.Stake(bob, 365, maxx.Tokens(1))
	require.ErrorIs(err, ledger.ErrInsufficientAllowance)
}

func TestStakeBeforeLaunch(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	// An engine whose launch lies ahead rejects staking outright.
	late := New(Config{
		Rules:      maxx.FakeNetRules().Stake,
		Env:        r.env,
		Roles:      inter.NewRoleSet(owner),
		Sink:       inter.NopSink{},
		Ledger:     r.ledger,
		Bank:       r.bank,
		NFTs:       r.nfts,
		Address:    engineAddr,
		LaunchDate: r.env.Now().AddDays(10),
	})
	require.False(late.Launched())
	_, err := late.Stake(alice, 365, maxx.Tokens(1))
	require.ErrorIs(err, ErrNotStarted)
}

func TestRestake(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	id, err := r.engine.Stake(alice, 100, maxx.Tokens(1000))
	require.NoError(err)
	p, err := r.engine.Position(id)
	require.NoError(err)

	// 1. Restaking an immature stake is rejected.
	r.env.AdvanceDays(50)
	require.ErrorIs(r.engine.Restake(alice, id, nil), ErrStakeNotMatured)

	// 2. At maturity the on-time payout plus the top-up rolls into the same
	// id with the same duration and a fresh start.
	r.env.AdvanceDays(50)
	rolled := new(big.Int).Add(maxx.Tokens(1000), interestFor(p.Shares, 100))
	require.NoError(r.engine.Restake(alice, id, maxx.Tokens(500)))

	p2, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(uint64(100), p2.DurationDays)
	require.Equal(r.env.Now(), p2.Start)
	require.Equal(0, p2.Amount.Cmp(new(big.Int).Add(rolled, maxx.Tokens(500))))

	// 3. Custody covers the new principal exactly.
	require.Equal(0, r.ledger.BalanceOf(engineAddr).Cmp(p2.Amount))
}

func TestRestakeTopUpFailureRollsBack(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	id, err := r.engine.Stake(alice, 100, maxx.Tokens(1000))
	require.NoError(err)
	r.env.AdvanceDays(100)

	supply := r.ledger.TotalSupply()
	custody := r.ledger.BalanceOf(engineAddr)
	before, err := r.engine.Position(id)
	require.NoError(err)

	// 1. A top-up the allowance cannot cover fails the whole restake:
	// supply, custody and the position are exactly as before.
	require.NoError(r.ledger.Approve(alice, engineAddr, big.NewInt(0)))
	require.ErrorIs(r.engine.Restake(alice, id, maxx.Tokens(500)), ledger.ErrInsufficientAllowance)
	require.Equal(0, supply.Cmp(r.ledger.TotalSupply()))
	require.Equal(0, custody.Cmp(r.ledger.BalanceOf(engineAddr)))
	after, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(0, before.Amount.Cmp(after.Amount))
	require.Equal(before.Start, after.Start)

	// 2. Same with a paused ledger, which rejects the pull but not mints.
	require.NoError(r.ledger.Approve(alice, engineAddr, maxx.Tokens(1000)))
	require.NoError(r.ledger.Pause(owner))
	require.ErrorIs(r.engine.Restake(alice, id, maxx.Tokens(500)), ledger.ErrPaused)
	require.Equal(0, supply.Cmp(r.ledger.TotalSupply()))
	require.Equal(0, custody.Cmp(r.ledger.BalanceOf(engineAddr)))

	// 3. Once the pull can succeed the restake commits in full.
	require.NoError(r.ledger.Unpause(owner))
	require.NoError(r.engine.Restake(alice, id, maxx.Tokens(500)))
	p, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(0, r.ledger.BalanceOf(engineAddr).Cmp(p.Amount))
}

func TestMaxShare(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	id, err := r.engine.Stake(alice, 100, maxx.Tokens(1000))
	require.NoError(err)
	p, err := r.engine.Position(id)
	require.NoError(err)

	// Half way in, max-share rolls principal plus accrued interest into the
	// 3333-day ceiling without any penalty.
	r.env.AdvanceDays(50)
	accrued := interestFor(p.Shares, 50)
	require.NoError(r.engine.MaxShare(alice, id))

	p2, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(maxx.MaxStakeDays, p2.DurationDays)
	require.Equal(r.env.Now(), p2.Start)
	require.Equal(0, p2.Amount.Cmp(new(big.Int).Add(maxx.Tokens(1000), accrued)))
	require.Equal(0, r.ledger.BalanceOf(engineAddr).Cmp(p2.Amount))

	// The rewrite is announced as a Stake event at the new duration.
	ev, ok := r.sink.Last().(inter.StakeEvent)
	require.True(ok)
	require.Equal(maxx.MaxStakeDays, ev.DurationDays)
}

func TestTransferAndApprove(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)

	id, err := r.engine.Stake(alice, 365, maxx.Tokens(100))
	require.NoError(err)

	// 1. Only the owner can transfer or rename.
	require.ErrorIs(r.engine.TransferStake(bob, id, bob), ErrNotOwner)
	require.ErrorIs(r.engine.ChangeStakeName(bob, id, "x"), ErrNotOwner)

	// 2. A transfer moves ownership; the old owner loses all access.
	require.NoError(r.engine.TransferStake(alice, id, bob))
	p, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(bob, p.Owner)
	require.ErrorIs(r.engine.TransferStake(alice, id, alice), ErrNotOwner)

	// 3. Delegated transfer needs a prior approval, which is consumed by
	// the transfer.
	require.ErrorIs(r.engine.TransferStakeFrom(alice, id, alice), ErrNotApproved)
	require.NoError(r.engine.ApproveStake(bob, id, alice, true))
	require.NoError(r.engine.TransferStakeFrom(alice, id, alice))
	require.ErrorIs(r.engine.TransferStakeFrom(alice, id, bob), ErrNotApproved)

	// 4. Renaming by the owner works.
	require.NoError(r.engine.ChangeStakeName(alice, id, "retirement"))
	p, err = r.engine.Position(id)
	require.NoError(err)
	require.Equal("retirement", p.Name)
}

func TestNftShareBonus(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)
	genesis := common.HexToAddress("0x9e1")
	legacy := common.HexToAddress("0x9e2")

	// 1. Bonus configuration is owner-gated and capped.
	require.ErrorIs(r.engine.SetNftBonus(alice, genesis, 100), inter.ErrUnauthorized)
	var cfgErr *maxx.ConfigurationError
	require.ErrorAs(r.engine.SetNftBonus(owner, genesis, 5001), &cfgErr)
	require.NoError(r.engine.SetNftBonus(owner, genesis, 2000))
	require.NoError(r.engine.SetNftBonus(owner, legacy, 4000))

	// 2. A non-holder gets plain shares.
	id, err := r.engine.Stake(alice, 365, maxx.Tokens(100))
	require.NoError(err)
	plain, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(uint64(0), plain.NftBonusBps)

	// 3. A holder of one collection gets its uplift; holding both caps the
	// sum at the rules' ceiling.
	r.nfts.Add(genesis, alice)
	id, err = r.engine.Stake(alice, 365, maxx.Tokens(100))
	require.NoError(err)
	single, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(uint64(2000), single.NftBonusBps)
	require.Equal(1, single.Shares.Cmp(plain.Shares))

	r.nfts.Add(legacy, alice)
	id, err = r.engine.Stake(alice, 365, maxx.Tokens(100))
	require.NoError(err)
	capped, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(uint64(5000), capped.NftBonusBps)
}

func TestStakeFor(t *testing.T) {
	require := require.New(t)
	r := newTestRig(t)
	funder := common.HexToAddress("0x00f2")

	// 1. Only registered funders may create stakes for others.
	_, err := r.engine.StakeFor(funder, bob, 365, maxx.Tokens(10))
	require.ErrorIs(err, inter.ErrUnauthorized)

	require.ErrorIs(r.engine.AuthorizeFunder(alice, funder), inter.ErrUnauthorized)
	require.NoError(r.engine.AuthorizeFunder(owner, funder))
	require.NoError(r.ledger.Allow(owner, funder))
	require.NoError(r.ledger.Transfer(vault, funder, maxx.Tokens(100)))

	// 2. The principal comes out of the funder's own balance; the stake
	// belongs to the beneficiary.
	id, err := r.engine.StakeFor(funder, bob, 365, maxx.Tokens(10))
	require.NoError(err)
	p, err := r.engine.Position(id)
	require.NoError(err)
	require.Equal(bob, p.Owner)
	require.Equal(0, r.ledger.BalanceOf(funder).Cmp(maxx.Tokens(90)))
}
