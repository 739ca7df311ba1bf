// Package store persists engine snapshots: RLP-encoded records in a Badger
// database behind an LRU read cache. The engines themselves never touch the
// store; the host assembles records from engine state and replays them on
// restart.
package store

import (
	"errors"

	"github.com/dgraph-io/badger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when no record exists under the requested key.
var ErrNotFound = errors.New("record not found")

const cacheSize = 512

// Store is the snapshot database. Safe for concurrent use; Badger and the
// cache synchronize internally.
type Store struct {
	db    *badger.DB
	cache *lru.Cache
	log   *logrus.Logger
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*Store, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	opts := badger.DefaultOptions(path)
	opts.Logger = logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{
		db:    db,
		cache: cache,
		log:   logger,
	}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	s.cache.Purge()
	return s.db.Close()
}

// put encodes rec and writes it under key, refreshing the cache.
func (s *Store) put(key []byte, rec interface{}) error {
	raw, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	})
	if err != nil {
		return err
	}
	s.cache.Add(string(key), raw)
	return nil
}

// get reads the raw record under key, serving from the cache when possible.
func (s *Store) get(key []byte, out interface{}) error {
	if raw, ok := s.cache.Get(string(key)); ok {
		return rlp.DecodeBytes(raw.([]byte), out)
	}
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.cache.Add(string(key), raw)
	return rlp.DecodeBytes(raw, out)
}

// PutAccount writes one ledger account record.
func (s *Store) PutAccount(rec *AccountRecord) error {
	return s.put(accountKey(rec.Address), rec)
}

// Account reads the account record of addr, or ErrNotFound.
func (s *Store) Account(addr common.Address) (*AccountRecord, error) {
	rec := new(AccountRecord)
	if err := s.get(accountKey(addr), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PutStake writes one stake position record.
func (s *Store) PutStake(rec *StakeRecord) error {
	return s.put(stakeKey(rec.ID), rec)
}

// Stake reads the stake record with the given id, or ErrNotFound.
func (s *Store) Stake(id uint64) (*StakeRecord, error) {
	rec := new(StakeRecord)
	if err := s.get(stakeKey(id), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ForEachStake visits every stored stake record in id order. The visitor
// returns false to stop early.
func (s *Store) ForEachStake(fn func(*StakeRecord) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = stakePrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(stakePrefix); it.ValidForPrefix(stakePrefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec := new(StakeRecord)
			if err := rlp.DecodeBytes(raw, rec); err != nil {
				return err
			}
			if !fn(rec) {
				return nil
			}
		}
		return nil
	})
}

// SetClaimed marks addr as having claimed its airdrop entitlement.
func (s *Store) SetClaimed(addr common.Address) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(claimedKey(addr), []byte{1})
	})
	if err != nil {
		return err
	}
	s.cache.Add(string(claimedKey(addr)), []byte{1})
	return nil
}

// WasClaimed reports whether addr is marked as claimed.
func (s *Store) WasClaimed(addr common.Address) (bool, error) {
	key := claimedKey(addr)
	if _, ok := s.cache.Get(string(key)); ok {
		return true, nil
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.cache.Add(string(key), []byte{1})
	return true, nil
}

// PutMeta writes the singleton meta record.
func (s *Store) PutMeta(rec *MetaRecord) error {
	return s.put(metaKey, rec)
}

// Meta reads the singleton meta record, or ErrNotFound.
func (s *Store) Meta() (*MetaRecord, error) {
	rec := new(MetaRecord)
	if err := s.get(metaKey, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
