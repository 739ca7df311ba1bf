package inter

// Env is the host environment injected into every engine. The transactional
// ledger runtime that hosts the core owns real time and block production;
// the core only ever reads them through this interface, one value per
// operation.
type Env interface {
	// Now returns the current logical time (block timestamp equivalent).
	Now() Timestamp

	// BlockNumber returns the current block height. It is used only by the
	// ledger's inter-transfer block-gap rule.
	BlockNumber() uint64
}

// FakeEnv is a manually driven Env for tests and local simulation,
// analogous to a fake-net clock: time and block height only move when the
// test advances them.
type FakeEnv struct {
	Time  Timestamp
	Block uint64
}

// NewFakeEnv creates a FakeEnv starting at the given timestamp and block 1.
func NewFakeEnv(start Timestamp) *FakeEnv {
	return &FakeEnv{Time: start, Block: 1}
}

// Now implements Env.
func (e *FakeEnv) Now() Timestamp {
	return e.Time
}

// BlockNumber implements Env.
func (e *FakeEnv) BlockNumber() uint64 {
	return e.Block
}

// AdvanceSeconds moves time forward and mines a single block, mirroring the
// evm_increaseTime + mine pattern used against the original runtime.
func (e *FakeEnv) AdvanceSeconds(sec uint64) {
	e.Time += Timestamp(sec)
	e.Block++
}

// AdvanceDays moves time forward by whole days and mines a single block.
func (e *FakeEnv) AdvanceDays(days uint64) {
	e.AdvanceSeconds(days * SecondsPerDay)
}

// NextBlock mines a block without moving time.
func (e *FakeEnv) NextBlock() {
	e.Block++
}
