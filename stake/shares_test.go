package stake

import (
	"math/big"
	"testing"

	"github.com/MaxxFinance/maxx-finance/maxx"
)

// TestComputeShares verifies the duration curve: shares equal the amount at
// the minimum duration and double it at the ceiling, growing linearly in
// between.
func TestComputeShares(t *testing.T) {
	amount := big.NewInt(3332) // divisible by MaxStakeDays-1 for exact points

	tests := []struct {
		name     string
		days     uint64
		bonusBps uint64
		want     int64
	}{
		{"one day, no bonus", 1, 0, 3332},
		{"ceiling doubles", maxx.MaxStakeDays, 0, 6664},
		{"midpoint", 1667, 0, 3332 + 1666},
		{"one day, max NFT bonus", 1, 5000, 4998},
		{"ceiling with 10% bonus", maxx.MaxStakeDays, 1000, 6664 + 666},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeShares(amount, tt.days, tt.bonusBps)
			if got.Int64() != tt.want {
				t.Errorf("computeShares(%d days, %d bps) = %d, want %d", tt.days, tt.bonusBps, got.Int64(), tt.want)
			}
		})
	}
}

// TestInterestFor verifies the baseline: a full 365-day term earns exactly
// one tenth of the shares.
func TestInterestFor(t *testing.T) {
	shares := big.NewInt(36500)

	if got := interestFor(shares, 365); got.Int64() != 3650 {
		t.Errorf("full-term interest = %d, want 3650", got.Int64())
	}
	if got := interestFor(shares, 0); got.Int64() != 0 {
		t.Errorf("zero-day interest = %d, want 0", got.Int64())
	}
	if got := interestFor(shares, 36); got.Int64() != 360 {
		t.Errorf("36-day interest = %d, want 360", got.Int64())
	}
}

// TestPayoutRegimes pins the three payout regimes against hand-computed
// values. principal=36500 and shares=36500 keep every division exact.
func TestPayoutRegimes(t *testing.T) {
	principal := big.NewInt(36500)
	shares := big.NewInt(36500)
	const d = 100 // committed duration in days

	// full-term interest: 36500*100/3650 = 1000
	tests := []struct {
		name    string
		elapsed uint64
		want    int64
	}{
		// An immediate unstake forfeits everything.
		{"elapsed 0", 0, 0},
		// Midpoint: full principal back, half the accrued interest.
		// accrued = 36500*50/3650 = 500; kept = 500*50/100 = 250.
		{"midpoint", 50, 36500 + 250},
		// Quarter point: half the principal, a quarter of the accrued.
		// principal kept = 36500*50/100; accrued = 250, kept 250*25/100 = 62.
		{"quarter", 25, 18250 + 62},
		// On time: principal plus the full committed interest, exactly.
		{"maturity", 100, 37500},
		// One day of grace is already penalized: (37500*364/365).
		{"one day late", 101, 37500 * 364 / 365},
		// 73 days late: 292/365 = 4/5 of the full payout.
		{"73 days late", 173, 37500 * 4 / 5},
		// A year past maturity the payout hits zero and stays there.
		{"365 days late", 465, 0},
		{"far beyond", 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := payout(principal, shares, d, tt.elapsed)
			if got.Int64() != tt.want {
				t.Errorf("payout(elapsed=%d) = %d, want %d", tt.elapsed, got.Int64(), tt.want)
			}
		})
	}
}

// TestPayoutNeverExceedsCommitted verifies the payout is maximal exactly at
// maturity.
func TestPayoutNeverExceedsCommitted(t *testing.T) {
	principal := big.NewInt(1_000_000)
	shares := computeShares(principal, 365, 0)
	committed := new(big.Int).Add(principal, interestFor(shares, 365))

	for elapsed := uint64(0); elapsed <= 800; elapsed += 7 {
		got := payout(principal, shares, 365, elapsed)
		if got.Cmp(committed) > 0 {
			t.Fatalf("payout(elapsed=%d) = %s exceeds committed %s", elapsed, got, committed)
		}
	}
	if payout(principal, shares, 365, 365).Cmp(committed) != 0 {
		t.Error("payout at maturity must equal the committed total")
	}
}
