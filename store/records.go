package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot record types. All of them are RLP-encodable; *big.Int fields must
// be non-nil and non-negative, matching the engines' own value domains.

// AccountRecord mirrors one ledger account.
type AccountRecord struct {
	Address       common.Address
	Balance       *big.Int
	LastBuyBlock  uint64
	LastSellBlock uint64
	HasBought     bool
	HasSold       bool
}

// StakeRecord mirrors one stake position.
type StakeRecord struct {
	ID           uint64
	Owner        common.Address
	Name         string
	Amount       *big.Int
	Shares       *big.Int
	DurationDays uint64
	Start        uint64
	NftBonusBps  uint64
}

// MetaRecord carries the singleton counters and dates of a snapshot.
type MetaRecord struct {
	TotalSupply     *big.Int
	StakeIDCounter  uint64
	StakeLaunch     uint64
	ClaimLaunch     uint64
	AmplifierLaunch uint64
}
