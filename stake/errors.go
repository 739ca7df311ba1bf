package stake

import (
	"errors"
)

// Stake engine error kinds.
var (
	// ErrInvalidDuration is returned when a stake duration falls outside
	// the permitted [1, 3333] day range.
	ErrInvalidDuration = errors.New("stake duration out of range")

	// ErrNotOwner is returned when the caller does not own the stake.
	ErrNotOwner = errors.New("you are not the owner of this stake")

	// ErrStakeNotMatured is returned by restake before maturity.
	ErrStakeNotMatured = errors.New("you cannot restake a stake that is not matured")

	// ErrNotApproved is returned when the caller lacks a transfer approval
	// for the stake, or when a purchase targets an unlisted stake.
	ErrNotApproved = errors.New("stake is not approved for this operation")

	// ErrInsufficientPayment is returned when a purchase supplies less than
	// the asking price.
	ErrInsufficientPayment = errors.New("must send at least the asking price")

	// ErrNotStarted is returned when staking is attempted before launch.
	ErrNotStarted = errors.New("staking has not launched yet")

	// ErrUnknownStake is returned for ids that were never created or were
	// already unstaked.
	ErrUnknownStake = errors.New("unknown stake id")
)
