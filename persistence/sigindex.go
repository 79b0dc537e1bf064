package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/internal/logging"
)

// SigIndex is a derived, fully rebuildable cache mapping every transaction
// signature that has ever appeared in the chain to the height of the block
// that carries it. It exists purely to make mempool admission's duplicate
// check (spec §4.4 step 5, "no duplicates by signature") cheap on a long
// chain without re-walking every block;
// the JSON document written by Store remains the sole authoritative state
// (spec §6), so a missing or corrupt index is never fatal — it is rebuilt
// from the in-memory chain on demand.
type SigIndex struct {
	db *badger.DB
	// mem is used instead of db when the on-disk index could not be opened
	// (e.g. a stale lock file that could not be recovered): callers still
	// get a working duplicate-signature cache, just not a persisted one.
	mem map[string]int
}

// OpenSigIndex opens (or creates) the badger-backed signature index at dir.
// Failure to open falls back to an in-memory index rather than propagating
// the error — this cache is derived state, not authoritative, so a broken
// database file must never stop the node from starting.
func OpenSigIndex(dir string) *SigIndex {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := openDB(dir, opts)
	if err != nil {
		logging.Storage.Warn().Err(err).Str("dir", dir).Msg("signature index unavailable, falling back to in-memory cache")
		return &SigIndex{mem: make(map[string]int)}
	}
	return &SigIndex{db: db}
}

// Close releases the underlying database handle, if any.
func (s *SigIndex) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Has reports whether signature has already been recorded.
func (s *SigIndex) Has(signature string) bool {
	if s.db == nil {
		_, ok := s.mem[signature]
		return ok
	}
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(signature))
		found = err == nil
		return nil
	})
	return found
}

// Record stores signature as having appeared at the given block height.
func (s *SigIndex) Record(signature string, height int) {
	if s.db == nil {
		s.mem[signature] = height
		return
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(signature), []byte(fmt.Sprintf("%d", height)))
	})
	if err != nil {
		logging.Storage.Warn().Err(err).Msg("failed to record signature in index")
	}
}

// Rebuild discards the index and repopulates it from chain. Called
// alongside every balance rebuild so the cache never drifts from the
// authoritative in-memory chain (spec §3, "Balance index... never read as
// authoritative across a mutation boundary" — the signature index follows
// the same discipline).
func (s *SigIndex) Rebuild(chain []*blockchain.Block) {
	if s.db == nil {
		s.mem = make(map[string]int, len(chain))
		for _, block := range chain {
			for _, tx := range block.Transactions {
				if !tx.IsCoinbase() {
					s.mem[tx.Signature] = block.Height
				}
			}
		}
		return
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Storage.Warn().Err(err).Msg("failed to clear signature index")
	}

	for _, block := range chain {
		for _, tx := range block.Transactions {
			if !tx.IsCoinbase() {
				s.Record(tx.Signature, block.Height)
			}
		}
	}
}

// retry removes a stale lock file and reopens the database once. Badger
// leaves a LOCK file behind after an unclean shutdown; without this the
// node would refuse to start a second time on the same path.
func retry(dir string, originalOpts badger.Options) (*badger.DB, error) {
	lockPath := filepath.Join(dir, "LOCK")
	if err := os.Remove(lockPath); err != nil {
		return nil, fmt.Errorf("failed to remove lock file: %w", err)
	}
	return badger.Open(originalOpts)
}

func openDB(dir string, opts badger.Options) (*badger.DB, error) {
	db, err := badger.Open(opts)
	if err == nil {
		return db, nil
	}
	if strings.Contains(err.Error(), "LOCK") {
		if db, retryErr := retry(dir, opts); retryErr == nil {
			logging.Storage.Info().Str("dir", dir).Msg("signature index database unlocked")
			return db, nil
		}
	}
	return nil, err
}
