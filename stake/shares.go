package stake

import (
	"math/big"

	"github.com/MaxxFinance/maxx-finance/maxx"
)

// Share and interest arithmetic.
//
// Shares reward longer commitments: a 1-day stake gets shares equal to its
// amount, and the bonus grows linearly with duration up to double the
// amount at the 3333-day ceiling:
//
//	shares = amount + amount*(durationDays-1)/(MaxStakeDays-1)
//
// Interest accrues on shares at the protocol baseline — a full-term 365-day
// stake earns exactly shares/10:
//
//	interest(days) = shares * days / 365 / 10
//
// All divisions truncate, matching the original ledger runtime's integer
// semantics.

// interestDenominator is 365*10.
var interestDenominator = new(big.Int).SetUint64(maxx.BaseStakeDays * maxx.InterestDivisor)

// computeShares derives the share count for a principal, duration and NFT
// bonus (in bps, already capped by the caller).
func computeShares(amount *big.Int, durationDays, bonusBps uint64) *big.Int {
	bonus := new(big.Int).Mul(amount, new(big.Int).SetUint64(durationDays-1))
	bonus.Div(bonus, new(big.Int).SetUint64(maxx.MaxStakeDays-1))
	shares := new(big.Int).Add(amount, bonus)
	if bonusBps > 0 {
		uplift := new(big.Int).Mul(shares, new(big.Int).SetUint64(bonusBps))
		uplift.Div(uplift, big.NewInt(maxx.BasisPoints))
		shares.Add(shares, uplift)
	}
	return shares
}

// interestFor returns shares * days / 3650.
func interestFor(shares *big.Int, days uint64) *big.Int {
	interest := new(big.Int).Mul(shares, new(big.Int).SetUint64(days))
	return interest.Div(interest, interestDenominator)
}

// payout computes the unstake payout for a position with the given whole
// days elapsed since start.
//
// Three regimes relative to the committed duration d:
//
//   - elapsed < d (early): interest accrued so far is shares*elapsed/3650.
//     The interest penalty shrinks linearly from 100% at elapsed=0 to 50%
//     at the midpoint to 0% at maturity; the principal penalty shrinks
//     linearly from 100% at elapsed=0 to 0% at the midpoint.
//
//   - elapsed == d: principal plus the full committed interest, exactly.
//
//   - elapsed > d (late): full interest is earned, then the whole payout
//     decays by daysLate/365, hitting zero one year past maturity.
func payout(principal, shares *big.Int, durationDays, elapsedDays uint64) *big.Int {
	d := new(big.Int).SetUint64(durationDays)

	if elapsedDays < durationDays {
		accrued := interestFor(shares, elapsedDays)

		// interest kept: accrued * elapsed / d
		interestPart := new(big.Int).Mul(accrued, new(big.Int).SetUint64(elapsedDays))
		interestPart.Div(interestPart, d)

		// principal kept: principal * min(2*elapsed, d) / d
		kept := 2 * elapsedDays
		if kept > durationDays {
			kept = durationDays
		}
		principalPart := new(big.Int).Mul(principal, new(big.Int).SetUint64(kept))
		principalPart.Div(principalPart, d)

		return principalPart.Add(principalPart, interestPart)
	}

	total := new(big.Int).Add(principal, interestFor(shares, durationDays))
	daysLate := elapsedDays - durationDays
	if daysLate == 0 {
		return total
	}
	if daysLate >= maxx.LatePenaltyWindowDays {
		return new(big.Int)
	}
	total.Mul(total, new(big.Int).SetUint64(maxx.LatePenaltyWindowDays-daysLate))
	return total.Div(total, new(big.Int).SetUint64(maxx.LatePenaltyWindowDays))
}
