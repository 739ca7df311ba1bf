package inter

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnauthorized is returned when a caller lacks the capability required
// by a gated operation.
var ErrUnauthorized = errors.New("caller is not authorized for this operation")

// Role identifies a capability granted to an address.
type Role uint8

// Supported roles.
const (
	// RoleOwner may change engine configuration and wiring.
	RoleOwner Role = iota
	// RoleMinter may mint and burn ledger tokens. The stake engine holds it
	// to realize interest payouts.
	RoleMinter
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleMinter:
		return "minter"
	default:
		return "unknown"
	}
}

// RoleChecker is the capability-check function supplied by the host's
// access-control mechanism. Gated operations call it at entry and abort
// with ErrUnauthorized on a false result.
type RoleChecker interface {
	HasRole(role Role, addr common.Address) bool
}

// RoleSet is a map-backed RoleChecker usable as-is by hosts and tests.
type RoleSet struct {
	grants map[Role]map[common.Address]bool
}

// NewRoleSet creates a RoleSet with the given address granted RoleOwner.
func NewRoleSet(owner common.Address) *RoleSet {
	rs := &RoleSet{grants: make(map[Role]map[common.Address]bool)}
	rs.Grant(RoleOwner, owner)
	return rs
}

// Grant gives a role to an address.
func (rs *RoleSet) Grant(role Role, addr common.Address) {
	if rs.grants[role] == nil {
		rs.grants[role] = make(map[common.Address]bool)
	}
	rs.grants[role][addr] = true
}

// Revoke removes a role from an address.
func (rs *RoleSet) Revoke(role Role, addr common.Address) {
	delete(rs.grants[role], addr)
}

// HasRole implements RoleChecker.
func (rs *RoleSet) HasRole(role Role, addr common.Address) bool {
	return rs.grants[role][addr]
}
