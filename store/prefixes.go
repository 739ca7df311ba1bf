package store

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// Key prefixes partition the snapshot keyspace by record type.
var (
	accountPrefix = []byte("a:")
	stakePrefix   = []byte("s:")
	claimedPrefix = []byte("c:")
	metaKey       = []byte("m:snapshot")
)

func accountKey(addr common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

func stakeKey(id uint64) []byte {
	key := append([]byte{}, stakePrefix...)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return append(key, buf[:]...)
}

func claimedKey(addr common.Address) []byte {
	return append(append([]byte{}, claimedPrefix...), addr.Bytes()...)
}
