package merkle

import (
	"bytes"
	"errors"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownLeaf is returned when a proof is requested for a leaf that is
// not part of the tree.
var ErrUnknownLeaf = errors.New("leaf is not part of the tree")

// Entitlement is one (address, amount) input of the airdrop tree.
type Entitlement struct {
	Address common.Address
	Amount  *big.Int
}

// Tree is the sorted Merkle tree the claim proofs are generated from.
// Leaves are sorted bytewise and each pair is combined smaller-hash-first;
// an odd trailing node is promoted to the next level unchanged. This
// mirrors the offline generator, so roots and proofs produced here match
// the ones distributed to claimants.
type Tree struct {
	levels [][]common.Hash // levels[0] is the sorted leaf level
}

// NewTree builds the tree for the given entitlements.
func NewTree(inputs []Entitlement) *Tree {
	leaves := make([]common.Hash, len(inputs))
	for i, in := range inputs {
		leaves[i] = Leaf(in.Address, in.Amount)
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i][:], leaves[j][:]) < 0
	})

	t := &Tree{levels: [][]common.Hash{leaves}}
	for level := leaves; len(level) > 1; {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				// odd node, promote unchanged
				next = append(next, level[i])
				break
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t
}

// Root returns the tree root. An empty tree has a zero root.
func (t *Tree) Root() common.Hash {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return common.Hash{}
	}
	return top[0]
}

// Proof returns the sibling path for the given entitlement, ordered from
// the leaf level up.
func (t *Tree) Proof(addr common.Address, amount *big.Int) ([]common.Hash, error) {
	target := Leaf(addr, amount)
	idx := -1
	for i, leaf := range t.levels[0] {
		if leaf == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownLeaf
	}

	var proof []common.Hash
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		idx /= 2
	}
	return proof, nil
}
