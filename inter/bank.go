package inter

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInsufficientFunds is returned by NativeBank when a transfer exceeds
// the payer's native balance.
var ErrInsufficientFunds = errors.New("insufficient native funds")

// NativeLedger abstracts the native currency (the MATIC equivalent of the
// original deployment). The marketplace's native payment mode and the
// amplifier's deposits move value through it; the token ledger itself never
// touches native currency.
type NativeLedger interface {
	Transfer(from, to common.Address, amount *big.Int) error
	BalanceOf(addr common.Address) *big.Int
}

// NativeBank is a map-backed NativeLedger for hosts and tests.
type NativeBank struct {
	balances map[common.Address]*big.Int
}

// NewNativeBank creates an empty bank.
func NewNativeBank() *NativeBank {
	return &NativeBank{balances: make(map[common.Address]*big.Int)}
}

// Fund credits an address out of thin air. Host/test setup only.
func (b *NativeBank) Fund(addr common.Address, amount *big.Int) {
	b.credit(addr, amount)
}

// Transfer implements NativeLedger.
func (b *NativeBank) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	bal := b.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	bal.Sub(bal, amount)
	b.credit(to, amount)
	return nil
}

// BalanceOf implements NativeLedger. The returned value is a copy.
func (b *NativeBank) BalanceOf(addr common.Address) *big.Int {
	bal := b.balances[addr]
	if bal == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}

func (b *NativeBank) credit(addr common.Address, amount *big.Int) {
	bal := b.balances[addr]
	if bal == nil {
		bal = new(big.Int)
		b.balances[addr] = bal
	}
	bal.Add(bal, amount)
}
