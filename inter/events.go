package inter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event is the typed union of all protocol events. Engines push events to
// an injected Sink; off-chain indexers subscribe on the host side.
type Event interface {
	// Name returns the event name as emitted by the original contracts,
	// e.g. "Transfer", "Stake", "Purchase".
	Name() string
}

// Sink receives protocol events. Implementations must not block: emission
// happens inside the serialized state transition.
type Sink interface {
	Emit(ev Event)
}

// TransferEvent records a ledger token movement. Burns are emitted with the
// zero address as To, mints with the zero address as From.
type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// ApprovalEvent records a delegated-transfer allowance update.
type ApprovalEvent struct {
	Owner   common.Address
	Spender common.Address
	Value   *big.Int
}

// StakeEvent records the creation (or max-share rewrite) of a stake
// position.
type StakeEvent struct {
	Owner        common.Address
	DurationDays uint64
	Amount       *big.Int
}

// UnstakeEvent records the destruction of a stake position and its payout.
type UnstakeEvent struct {
	ID     uint64
	Owner  common.Address
	Payout *big.Int
}

// ListEvent records a stake being listed on the marketplace.
type ListEvent struct {
	Lister common.Address
	ID     uint64
	Price  *big.Int
}

// DelistEvent records a stake being removed from the marketplace.
type DelistEvent struct {
	Lister common.Address
	ID     uint64
}

// PurchaseEvent records a marketplace sale.
type PurchaseEvent struct {
	Buyer  common.Address
	ID     uint64
	Amount *big.Int
}

// ClaimEvent records a successful airdrop claim.
type ClaimEvent struct {
	Account common.Address
	Amount  *big.Int
}

// DepositEvent records an amplifier deposit of native currency.
type DepositEvent struct {
	Account  common.Address
	Day      uint64
	Amount   *big.Int
	Referrer common.Address
}

// AllocationClaimEvent records the realization of an amplifier entitlement
// as a stake position.
type AllocationClaimEvent struct {
	Account common.Address
	Day     uint64
	Amount  *big.Int
}

func (TransferEvent) Name() string        { return "Transfer" }
func (ApprovalEvent) Name() string        { return "Approval" }
func (StakeEvent) Name() string           { return "Stake" }
func (UnstakeEvent) Name() string         { return "Unstake" }
func (ListEvent) Name() string            { return "List" }
func (DelistEvent) Name() string          { return "Delist" }
func (PurchaseEvent) Name() string        { return "Purchase" }
func (ClaimEvent) Name() string           { return "Claim" }
func (DepositEvent) Name() string         { return "Deposit" }
func (AllocationClaimEvent) Name() string { return "AllocationClaim" }

// NopSink discards all events.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(Event) {}

// MemorySink records every emitted event in order. Test helper.
type MemorySink struct {
	Events []Event
}

// Emit implements Sink.
func (s *MemorySink) Emit(ev Event) {
	s.Events = append(s.Events, ev)
}

// Named returns all recorded events with the given name, in order.
func (s *MemorySink) Named(name string) []Event {
	var out []Event
	for _, ev := range s.Events {
		if ev.Name() == name {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the most recent event, or nil if none was emitted.
func (s *MemorySink) Last() Event {
	if len(s.Events) == 0 {
		return nil
	}
	return s.Events[len(s.Events)-1]
}
