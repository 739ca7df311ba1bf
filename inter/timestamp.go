// Package inter defines the core shared types of the Maxx Finance token
// economy: logical time, day indexing, protocol events, the injected host
// environment (clock and block counter), role-based capabilities, the
// native-currency bank and the NFT registry abstraction.
//
// Every engine in this module (ledger, stake, claim, amplifier) consumes
// these types instead of reaching for ambient process state: "now" and the
// current block are always read from an injected Env, and caller identity
// is always an explicit argument.
package inter

import (
	"time"
)

// SecondsPerDay is the length of a protocol day. All day-indexed state
// (daily sell accumulators, amplifier days, stake durations) is derived
// from it.
const SecondsPerDay = 86400

// Timestamp is a logical point in time, in seconds. It mirrors the block
// timestamp of the original ledger runtime and is always supplied by the
// host through an Env, never read from the wall clock inside the core.
type Timestamp uint64

// FromUnix converts a unix time in seconds to a Timestamp.
// Negative inputs clamp to zero.
func FromUnix(sec int64) Timestamp {
	if sec < 0 {
		return 0
	}
	return Timestamp(sec)
}

// FromTime converts a time.Time to a Timestamp.
func FromTime(t time.Time) Timestamp {
	return FromUnix(t.Unix())
}

// Unix returns the timestamp as unix seconds.
func (t Timestamp) Unix() int64 {
	return int64(t)
}

// Day returns the day index of the timestamp (timestamp / 86400).
func (t Timestamp) Day() uint64 {
	return uint64(t) / SecondsPerDay
}

// AddDays returns the timestamp shifted forward by the given number of days.
func (t Timestamp) AddDays(days uint64) Timestamp {
	return t + Timestamp(days*SecondsPerDay)
}

// DaysSince returns the number of whole days elapsed from start to t.
// If t is before start, it returns zero.
func (t Timestamp) DaysSince(start Timestamp) uint64 {
	if t <= start {
		return 0
	}
	return uint64(t-start) / SecondsPerDay
}
