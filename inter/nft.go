package inter

import (
	"github.com/ethereum/go-ethereum/common"
)

// NFTRegistry answers whether an address holds a token of an NFT
// collection. The stake engine consults it at stake-creation time to apply
// the configured share bonus; ownership itself lives outside the core.
type NFTRegistry interface {
	Holds(collection, owner common.Address) bool
}

// NFTSet is a map-backed NFTRegistry for hosts and tests.
type NFTSet struct {
	holders map[common.Address]map[common.Address]bool
}

// NewNFTSet creates an empty registry.
func NewNFTSet() *NFTSet {
	return &NFTSet{holders: make(map[common.Address]map[common.Address]bool)}
}

// Add marks owner as a holder of the collection.
func (s *NFTSet) Add(collection, owner common.Address) {
	if s.holders[collection] == nil {
		s.holders[collection] = make(map[common.Address]bool)
	}
	s.holders[collection][owner] = true
}

// Remove unmarks owner as a holder of the collection.
func (s *NFTSet) Remove(collection, owner common.Address) {
	delete(s.holders[collection], owner)
}

// Holds implements NFTRegistry.
func (s *NFTSet) Holds(collection, owner common.Address) bool {
	return s.holders[collection][owner]
}
