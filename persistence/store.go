// Package persistence owns the single JSON document that is the node's
// sole authoritative on-disk state (spec §6), plus a derived, rebuildable
// signature-index cache (sigindex.go) kept alongside it for fast
// duplicate-signature lookups.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/internal/logging"
	"github.com/kilimba-labs/ledgerchain/ledger"
)

// DefaultPath is the default document path. Spec §9 flags the original's
// hidden process-wide constant as a design smell; here it is only a
// default, and Store.path is a field set by the caller (cmd/node derives it
// from the node's port), never a global.
const DefaultPath = "blockchain.json"

// document is the on-disk shape (spec §6: "a single JSON document... with
// keys chain, balances, wallets, public_keys, and optional
// initial_wallet_balances").
type document struct {
	Chain                 []*blockchain.Block  `json:"chain"`
	Mempool               []*blockchain.Transaction `json:"mempool,omitempty"`
	Balances              map[string]float64   `json:"balances"`
	Wallets               map[string]string    `json:"wallets"`
	PublicKeys            map[string]string    `json:"public_keys"`
	InitialWalletBalances map[string]float64   `json:"initial_wallet_balances,omitempty"`
}

// Store implements ledger.Persister against a single JSON file on disk.
type Store struct {
	path string
}

// NewStore creates a store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the full authoritative snapshot to disk. Save failures are
// logged and non-fatal (spec §7 "PersistenceError"): the next mutation
// simply tries again.
func (s *Store) Save(snap ledger.Snapshot) error {
	doc := document{
		Chain:                 snap.Chain,
		Mempool:               snap.Mempool,
		Balances:              snap.Balances,
		Wallets:               snap.Wallets,
		PublicKeys:            snap.PublicKeys,
		InitialWalletBalances: snap.InitialBalances,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("persistence: marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persistence: write %s: %w", s.path, err)
	}
	logging.Storage.Debug().Str("path", s.path).Msg("saved blockchain state")
	return nil
}

// Load reads the document at path and returns it as a ledger.Snapshot. On
// any read or parse failure, the file is removed and (false, zero-value)
// is returned so the caller falls back to a fresh genesis — mirroring the
// original's "corrupted file removed, starting fresh" recovery behavior.
func (s *Store) Load() (ledger.Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Storage.Warn().Err(err).Str("path", s.path).Msg("failed to read blockchain state, discarding")
			_ = os.Remove(s.path)
		}
		return ledger.Snapshot{}, false
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Storage.Error().Err(err).Str("path", s.path).Msg("corrupt blockchain state, discarding")
		_ = os.Remove(s.path)
		return ledger.Snapshot{}, false
	}

	if ok, reason := blockchain.IsValidChain(doc.Chain); !ok {
		logging.Storage.Error().Str("reason", reason).Str("path", s.path).Msg("persisted chain failed validation, discarding")
		_ = os.Remove(s.path)
		return ledger.Snapshot{}, false
	}

	snap := ledger.Snapshot{
		Chain:           doc.Chain,
		Mempool:         doc.Mempool,
		Balances:        doc.Balances,
		Wallets:         doc.Wallets,
		PublicKeys:      doc.PublicKeys,
		InitialBalances: doc.InitialWalletBalances,
	}
	if snap.InitialBalances == nil {
		snap.InitialBalances = make(map[string]float64)
	}
	logging.Storage.Info().Int("chain_length", len(snap.Chain)).Str("path", s.path).Msg("loaded blockchain state")
	return snap, true
}
