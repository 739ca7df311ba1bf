package integration

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/MaxxFinance/maxx-finance/inter"
	"github.com/MaxxFinance/maxx-finance/maxx"
	"github.com/MaxxFinance/maxx-finance/merkle"
)

var (
	owner = common.HexToAddress("0x0001")
	vault = common.HexToAddress("0x0002")
	alice = common.HexToAddress("0x00a1")
	bob   = common.HexToAddress("0x00b1")
	carol = common.HexToAddress("0x00c1")
)

const launch = inter.Timestamp(1000 * inter.SecondsPerDay)

func TestSystemWiring(t *testing.T) {
	require := require.New(t)
	sys, _ := FakeNetSystem(owner, vault, launch)

	// 1. Engine custody accounts are allowlisted so protocol transfers
	// bypass tax and limits.
	require.True(sys.Ledger.IsAllowed(StakeEngineAddress))
	require.True(sys.Ledger.IsAllowed(ClaimEngineAddress))
	require.True(sys.Ledger.IsAllowed(AmplifierAddress))

	// 2. The stake engine holds the minter capability for interest payouts.
	require.True(sys.Roles.HasRole(inter.RoleMinter, StakeEngineAddress))
	require.False(sys.Roles.HasRole(inter.RoleMinter, owner))

	// 3. The vault carries the full initial supply.
	require.Equal(0, sys.Ledger.BalanceOf(vault).Cmp(maxx.Tokens(100_000_000_000)))

	// 4. Do serializes an operation under the system lock.
	require.NoError(sys.Do(func() error {
		return sys.Ledger.Transfer(vault, alice, maxx.Tokens(1))
	}))
	require.Equal(0, sys.Ledger.BalanceOf(alice).Cmp(maxx.Tokens(1)))
}

// TestStakeEndToEnd walks the canonical staking flow: fund, approve, stake
// for a year, unstake exactly on time.
func TestStakeEndToEnd(t *testing.T) {
	require := require.New(t)
	sys, env := FakeNetSystem(owner, vault, launch)

	require.NoError(sys.Ledger.Transfer(vault, alice, maxx.Tokens(10_000)))
	require.NoError(sys.Ledger.Approve(alice, StakeEngineAddress, maxx.Tokens(10_000)))

	id, err := sys.Stake.Stake(alice, 365, maxx.Tokens(1_000))
	require.NoError(err)
	p, err := sys.Stake.Position(id)
	require.NoError(err)

	env.AdvanceDays(365)
	payout, err := sys.Stake.Unstake(alice, id)
	require.NoError(err)

	// On-time payout is principal plus one year of interest on the shares,
	// exactly; the custody account ends empty.
	interest := new(big.Int).Div(new(big.Int).Mul(p.Shares, big.NewInt(365)), big.NewInt(3650))
	require.Equal(0, payout.Cmp(new(big.Int).Add(maxx.Tokens(1_000), interest)))
	require.Equal(int64(0), sys.Ledger.BalanceOf(StakeEngineAddress).Int64())
}

// TestClaimEndToEnd walks the airdrop flow: allocate the pool, prove an
// entitlement, claim with a referrer, verify both stakes.
func TestClaimEndToEnd(t *testing.T) {
	require := require.New(t)
	sys, _ := FakeNetSystem(owner, vault, launch)

	tree := merkle.NewTree([]merkle.Entitlement{
		{Address: alice, Amount: maxx.Tokens(1_000)},
		{Address: bob, Amount: maxx.Tokens(500)},
	})
	require.NoError(sys.Claim.SetMerkleRoot(owner, tree.Root()))

	// The owner funds the claim pool out of the vault.
	require.NoError(sys.Ledger.Transfer(vault, owner, maxx.Tokens(5_000)))
	require.NoError(sys.Ledger.Approve(owner, ClaimEngineAddress, maxx.Tokens(5_000)))
	require.NoError(sys.Claim.AllocateMaxx(owner, maxx.Tokens(5_000)))

	proof, err := tree.Proof(alice, maxx.Tokens(1_000))
	require.NoError(err)
	require.NoError(sys.Claim.FreeClaim(alice, maxx.Tokens(1_000), proof, carol))

	// The claim became alice's 365-day stake, and carol got a 10% bonus
	// stake from the pool.
	p0, err := sys.Stake.Position(0)
	require.NoError(err)
	require.Equal(alice, p0.Owner)
	require.Equal(0, p0.Amount.Cmp(maxx.Tokens(1_000)))

	p1, err := sys.Stake.Position(1)
	require.NoError(err)
	require.Equal(carol, p1.Owner)
	require.Equal(0, p1.Amount.Cmp(maxx.Tokens(100)))

	require.True(sys.Claim.HasClaimed(alice))
	require.Equal(0, sys.Ledger.BalanceOf(ClaimEngineAddress).Cmp(maxx.Tokens(3_900)))
}

// TestAmplifierEndToEnd walks the amplifier flow: allocate the 60 days,
// deposit 25/75 on day zero, claim the pro-rata entitlements a day later.
func TestAmplifierEndToEnd(t *testing.T) {
	require := require.New(t)
	sys, env := FakeNetSystem(owner, vault, launch)

	allocations := make([]*big.Int, maxx.AmplifierDays)
	for i := range allocations {
		allocations[i] = maxx.Tokens(1_000)
	}
	require.NoError(sys.Amplifier.SetDailyAllocations(owner, allocations))
	require.NoError(sys.Ledger.Transfer(vault, AmplifierAddress, maxx.Tokens(60_000)))

	sys.Bank.Fund(alice, big.NewInt(1_000))
	sys.Bank.Fund(bob, big.NewInt(1_000))

	vaultNative := sys.Bank.BalanceOf(vault)
	require.NoError(sys.Amplifier.Deposit(alice, big.NewInt(25)))
	require.NoError(sys.Amplifier.DepositWithReferral(bob, big.NewInt(75), carol))

	// Native value forwards straight to the vault; carol is credited 10%
	// of bob's deposit.
	require.Equal(int64(100), new(big.Int).Sub(sys.Bank.BalanceOf(vault), vaultNative).Int64())
	require.Equal(int64(7), sys.Amplifier.ReferralCredit(carol).Int64())

	env.AdvanceDays(1)
	got, err := sys.Amplifier.ClaimDay(alice, 0)
	require.NoError(err)
	require.Equal(0, got.Cmp(maxx.Tokens(250)))
	got, err = sys.Amplifier.ClaimDay(bob, 0)
	require.NoError(err)
	require.Equal(0, got.Cmp(maxx.Tokens(750)))

	// Both entitlements are live 365-day stakes owned by the depositors.
	p0, err := sys.Stake.Position(0)
	require.NoError(err)
	require.Equal(alice, p0.Owner)
	p1, err := sys.Stake.Position(1)
	require.NoError(err)
	require.Equal(bob, p1.Owner)
	require.Equal(uint64(365), p1.DurationDays)
}
