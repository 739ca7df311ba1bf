// Package merkle implements the hash-based inclusion proofs that
// authenticate airdrop entitlements.
//
// The construction is byte-for-byte compatible with the offline tree the
// claim proofs are generated against: a leaf is
// keccak256(address ‖ amount), with the address in its 20-byte form and the
// amount as a 32-byte big-endian unsigned integer, and every interior node
// is keccak256 of its two children concatenated with the bytewise-smaller
// child first (the "sorted pairs" convention). Verification therefore
// needs no position information, only the sibling hashes.
package merkle

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Leaf computes the leaf hash for an (address, amount) entitlement.
func Leaf(addr common.Address, amount *big.Int) common.Hash {
	var buf [20 + 32]byte
	copy(buf[:20], addr.Bytes())
	if amount != nil {
		amount.FillBytes(buf[20:])
	}
	return crypto.Keccak256Hash(buf[:])
}

// hashPair combines two nodes with the smaller hash first.
func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// VerifyLeaf checks that (addr, amount) is included in the tree with the
// given root. The proof is the ordered sequence of sibling hashes from the
// leaf level up. Pure function, no state.
func VerifyLeaf(addr common.Address, amount *big.Int, proof []common.Hash, root common.Hash) bool {
	node := Leaf(addr, amount)
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}
