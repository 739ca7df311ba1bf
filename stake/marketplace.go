package stake

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/MaxxFinance/maxx-finance/inter"
)

// The stake marketplace: owners list positions at an asking price for a
// bounded time window; a buyer pays the lister directly (in native currency
// or ledger tokens, per the engine's payment asset) and takes ownership
// atomically with the payment.

type listing struct {
	lister  common.Address
	price   *big.Int
	endTime inter.Timestamp
}

// ListStake puts a stake up for sale at the given price until now+duration.
func (e *Engine) ListStake(caller common.Address, id uint64, price *big.Int, durationSeconds uint64) error {
	p, err := e.owned(caller, id)
	if err != nil {
		return err
	}
	e.listings[id] = &listing{
		lister:  caller,
		price:   new(big.Int).Set(price),
		endTime: e.env.Now() + inter.Timestamp(durationSeconds),
	}
	e.sink.Emit(inter.ListEvent{Lister: p.Owner, ID: id, Price: new(big.Int).Set(price)})
	return nil
}

// DelistStake removes a listing. Only the lister may delist.
func (e *Engine) DelistStake(caller common.Address, id uint64) error {
	lst := e.listings[id]
	if lst == nil {
		return ErrNotApproved
	}
	if lst.lister != caller {
		return ErrNotOwner
	}
	delete(e.listings, id)
	e.sink.Emit(inter.DelistEvent{Lister: caller, ID: id})
	return nil
}

// IsListed reports whether a stake has a live listing.
func (e *Engine) IsListed(id uint64) bool {
	lst := e.listings[id]
	return lst != nil && e.env.Now() <= lst.endTime
}

// SellPrice returns the asking price of a listed stake, or zero if the
// stake is not listed.
func (e *Engine) SellPrice(id uint64) *big.Int {
	if lst := e.listings[id]; lst != nil {
		return new(big.Int).Set(lst.price)
	}
	return new(big.Int)
}

// BuyStake purchases a listed stake. The payment argument is the value the
// buyer supplies (the msg.value equivalent in native mode, or the token
// amount the buyer approved in token mode); it must cover the asking price.
// Payment goes to the lister; ownership transfers atomically with it.
func (e *Engine) BuyStake(caller common.Address, id uint64, payment *big.Int) error {
	lst := e.listings[id]
	if lst == nil || e.env.Now() > lst.endTime {
		return ErrNotApproved
	}
	p := e.positions[id]
	if p == nil || p.zeroed() {
		return ErrUnknownStake
	}
	if payment == nil || payment.Cmp(lst.price) < 0 {
		return ErrInsufficientPayment
	}

	switch e.payment {
	case PayNative:
		if err := e.bank.Transfer(caller, lst.lister, payment); err != nil {
			return err
		}
	case PayToken:
		if err := e.ledger.TransferFrom(e.addr, caller, lst.lister, payment); err != nil {
			return err
		}
	}

	e.reassign(p, caller)
	e.sink.Emit(inter.PurchaseEvent{Buyer: caller, ID: id, Amount: new(big.Int).Set(payment)})
	e.log.Debug("stake purchased", "id", id, "buyer", caller, "price", lst.price)
	return nil
}
