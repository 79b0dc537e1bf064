// Package ledger is the chain manager: the single authoritative owner of
// the chain, mempool, balance index, and wallet registry (spec §3
// "Ownership", §4.8). Every state mutation — admitting a transaction,
// mining, accepting a remote block, syncing — goes through a Manager method
// while holding its mutation lock; everything else only ever reads a
// snapshot.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/internal/logging"
	"github.com/kilimba-labs/ledgerchain/mempool"
	"github.com/kilimba-labs/ledgerchain/wallet"
)

// Persister is the dependency the chain manager saves its full state
// through after every mutation (spec §6 "Persisted state"). It is an
// interface here, not a concrete import, so ledger never depends on the
// persistence package's on-disk format.
type Persister interface {
	Save(Snapshot) error
}

// SigIndexer is the derived signature-duplicate cache the chain manager
// consults instead of scanning the whole chain for a signature (spec §8
// invariant 6, "no signature appears twice in the chain") and keeps in
// lockstep with every balance rebuild. It is optional: a nil SigIndexer
// (the zero value of Manager.sigIndex) simply means every signature check
// falls back to the mempool-only check AddTransaction already performs.
type SigIndexer interface {
	Has(signature string) bool
	Record(signature string, height int)
	Rebuild(chain []*blockchain.Block)
}

// Snapshot is the full authoritative state the manager hands to a
// Persister, or receives back from one on load.
type Snapshot struct {
	Chain           []*blockchain.Block
	Mempool         []*blockchain.Transaction
	Balances        map[string]float64
	Wallets         map[string]string // address -> private key hex
	PublicKeys      map[string]string // address -> public key hex
	InitialBalances map[string]float64
}

// Manager is the chain manager described throughout spec §4.
type Manager struct {
	mu         sync.Mutex
	chain      []*blockchain.Block
	difficulty int

	Pool     *mempool.Pool
	Balances *mempool.Balances
	Wallets  *wallet.Registry

	persist  Persister
	sigIndex SigIndexer
}

// NewManager creates a fresh manager seeded with a genesis block, an empty
// mempool, and an empty wallet registry. persist may be nil, in which case
// mutations simply aren't saved (used by tests).
func NewManager(persist Persister, now int64) *Manager {
	genesis := blockchain.NewGenesisBlock(now, blockchain.InitialDifficulty)
	m := &Manager{
		chain:      []*blockchain.Block{genesis},
		difficulty: blockchain.InitialDifficulty,
		Pool:       mempool.NewPool(),
		Balances:   mempool.NewBalances(),
		Wallets:    wallet.NewRegistry(),
		persist:    persist,
	}
	m.Balances.Rebuild(m.chain, m.Wallets)
	return m
}

// LoadFromSnapshot rebuilds a manager's state from a previously persisted
// Snapshot (spec §6, load path). Callers are responsible for validating the
// chain beforehand (or falling back to a fresh genesis on failure, per
// persistence's own recovery rule).
func LoadFromSnapshot(persist Persister, snap Snapshot) *Manager {
	m := &Manager{
		chain:    snap.Chain,
		Pool:     mempool.NewPool(),
		Balances: mempool.NewBalances(),
		Wallets:  wallet.NewRegistry(),
		persist:  persist,
	}
	for addr, priv := range snap.Wallets {
		pub := snap.PublicKeys[addr]
		m.Wallets.Import(addr, pub, priv, snap.InitialBalances[addr])
	}
	m.Pool.Restore(snap.Mempool)
	if len(m.chain) > 0 {
		m.difficulty = m.chain[len(m.chain)-1].Difficulty
	} else {
		m.difficulty = blockchain.InitialDifficulty
	}
	m.Balances.Rebuild(m.chain, m.Wallets)
	return m
}

// Chain returns a copy of the current chain slice. The blocks themselves are
// treated as immutable once appended, so only the slice header is copied.
func (m *Manager) Chain() []*blockchain.Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*blockchain.Block, len(m.chain))
	copy(out, m.chain)
	return out
}

// Length returns the current chain length.
func (m *Manager) Length() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chain)
}

// Difficulty returns the difficulty the next locally mined block will use.
// Incoming blocks are checked against their own Difficulty field.
func (m *Manager) Difficulty() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.difficulty
}

func (m *Manager) lastBlock() *blockchain.Block {
	return m.chain[len(m.chain)-1]
}

// SetSigIndex attaches the derived signature-duplicate cache described by
// SigIndexer and immediately rebuilds it from the current chain. Called
// once at startup, after the manager already holds its initial chain (spec
// SPEC_FULL.md §4.10: the cache "rebuilds it from scratch... whenever
// balances are rebuilt", which includes the very first rebuild on load).
func (m *Manager) SetSigIndex(idx SigIndexer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sigIndex = idx
	if idx != nil {
		idx.Rebuild(m.chain)
	}
}

// rebuildDerivedStateLocked rebuilds both the balance index and the
// signature index together, keeping them in lockstep with the chain (spec
// SPEC_FULL.md §4.10). Must be called with m.mu held.
func (m *Manager) rebuildDerivedStateLocked() {
	m.Balances.Rebuild(m.chain, m.Wallets)
	if m.sigIndex != nil {
		m.sigIndex.Rebuild(m.chain)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	ws := m.Wallets.Snapshot()
	return Snapshot{
		Chain:           append([]*blockchain.Block(nil), m.chain...),
		Mempool:         m.Pool.Snapshot(),
		Balances:        m.Balances.Snapshot(),
		Wallets:         ws.PrivateKeys,
		PublicKeys:      ws.PublicKeys,
		InitialBalances: ws.InitialBalances,
	}
}

func (m *Manager) persistLocked() {
	if m.persist == nil {
		return
	}
	if err := m.persist.Save(m.snapshotLocked()); err != nil {
		logging.Storage.Warn().Err(err).Msg("failed to persist chain state")
	}
}

// AddTransaction implements the admission pipeline of spec §4.4. It returns
// false (never an error across the API boundary) for any admission failure,
// leaving state unchanged.
func (m *Manager) AddTransaction(tx *blockchain.Transaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := blockchain.ValidateTransactionSchema(tx); err != nil {
		logging.Chain.Warn().Err(err).Msg("transaction rejected: schema")
		return false
	}
	if tx.IsCoinbase() {
		logging.Chain.Warn().Msg("transaction rejected: COINBASE cannot be submitted directly")
		return false
	}
	if !tx.Verify() {
		logging.Chain.Warn().Msg("transaction rejected: bad signature")
		return false
	}
	if m.Pool.Has(tx.Signature) {
		logging.Chain.Warn().Msg("transaction rejected: duplicate signature")
		return false
	}
	if m.sigIndex != nil && m.sigIndex.Has(tx.Signature) {
		logging.Chain.Warn().Msg("transaction rejected: signature already present in chain")
		return false
	}

	senderKey := mempool.ResolveAccountKey(tx.Sender, m.Wallets)
	balance := m.Balances.Lookup(senderKey, m.Wallets)
	if balance < tx.Amount {
		logging.Chain.Warn().Str("sender", senderKey).Msg("transaction rejected: insufficient funds")
		return false
	}

	pending := m.Pool.PendingFromSameSender(senderKey, func(raw string) string {
		return mempool.ResolveAccountKey(raw, m.Wallets)
	})
	if pending+tx.Amount > balance {
		logging.Chain.Warn().Str("sender", senderKey).Msg("transaction rejected: pending-pool double-spend")
		return false
	}

	m.Pool.Append(tx)
	m.persistLocked()
	return true
}

// resolveMinerAddress implements spec §4.5 step 3's three-way resolution.
func (m *Manager) resolveMinerAddress(minerIdentifier string) (string, bool) {
	if addr, ok := m.Wallets.AddressForPublicKey(minerIdentifier); ok {
		return addr, true
	}
	if m.Wallets.Has(minerIdentifier) {
		return minerIdentifier, true
	}
	if isHex64(minerIdentifier) {
		return minerIdentifier, true
	}
	return "", false
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// MineBlock implements spec §4.5 in full.
func (m *Manager) MineBlock(minerIdentifier string, now int64) (*blockchain.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Pool.Len() == 0 {
		return nil, fmt.Errorf("mine_block: mempool is empty")
	}
	if ok, reason := blockchain.IsValidChain(m.chain); !ok {
		return nil, fmt.Errorf("mine_block: chain is invalid: %s", reason)
	}

	rewardAddr, ok := m.resolveMinerAddress(minerIdentifier)
	if !ok {
		return nil, fmt.Errorf("mine_block: cannot resolve miner identifier %q", minerIdentifier)
	}
	if _, local := m.Wallets.AddressForPublicKey(minerIdentifier); !local && !m.Wallets.Has(minerIdentifier) {
		logging.Consensus.Warn().Str("miner", rewardAddr).Msg("mining reward targets a raw public key with no local wallet")
	}

	tx := m.Pool.Oldest()
	last := m.lastBlock()

	block := blockchain.MineBlock(last, []*blockchain.Transaction{tx}, rewardAddr, m.difficulty, now)

	if err := blockchain.ValidateBlockAgainstPredecessor(block, last); err != nil {
		return nil, fmt.Errorf("mine_block: mined block failed validation: %w", err)
	}

	m.chain = append(m.chain, block)
	m.Pool.RemoveBySignature(tx.Signature)
	if m.sigIndex != nil {
		m.sigIndex.Record(tx.Signature, block.Height)
	}
	m.difficulty = blockchain.AdjustDifficulty(m.chain)
	m.rebuildDerivedStateLocked()
	m.persistLocked()

	logging.Consensus.Info().
		Int("height", block.Height).
		Str("hash", block.Hash).
		Int("difficulty", block.Difficulty).
		Msg("mined block")

	return block, nil
}

// AcceptBlock implements the inline per-block part of spec §4.8's
// background processor step 1: if the candidate extends the current tip and
// passes validation and its hash isn't already present, append it, clear
// its transactions from the mempool, rebuild balances, persist. It returns
// whether the block was appended, and whether the caller should instead
// trigger a full sync (candidate height is ahead of the local chain).
func (m *Manager) AcceptBlock(block *blockchain.Block) (appended bool, needsSync bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if block.Height > len(m.chain) {
		return false, true
	}
	for _, existing := range m.chain {
		if existing.Hash == block.Hash {
			return false, false
		}
	}

	last := m.lastBlock()
	if err := blockchain.ValidateBlockAgainstPredecessor(block, last); err != nil {
		logging.Chain.Warn().Err(err).Msg("rejected incoming block")
		return false, false
	}

	m.chain = append(m.chain, block)
	for _, tx := range block.Transactions {
		if !tx.IsCoinbase() {
			m.Pool.RemoveBySignature(tx.Signature)
			if m.sigIndex != nil {
				m.sigIndex.Record(tx.Signature, block.Height)
			}
		}
	}
	m.difficulty = blockchain.AdjustDifficulty(m.chain)
	m.rebuildDerivedStateLocked()
	m.persistLocked()

	logging.Chain.Info().Int("height", block.Height).Msg("accepted peer block")
	return true, false
}

// AcceptRemoteTransaction implements spec §4.8 background-processor step 2:
// admit a transaction received from a peer if it isn't already pending and
// it verifies. It does not run the full funds/double-spend admission
// pipeline — the wire already assumes the originating node ran that; this
// step is strictly about not forwarding forged or duplicate transactions.
func (m *Manager) AcceptRemoteTransaction(tx *blockchain.Transaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Pool.Has(tx.Signature) {
		return false
	}
	if !tx.Verify() {
		return false
	}
	m.Pool.Append(tx)
	m.persistLocked()
	return true
}

// ChainFetcher retrieves a peer's full chain, e.g. via GET /chain. It
// returns the chain alongside the peer's self-reported length so SyncChain
// can check the two agree (spec §4.8: "the reported length matches the
// contents").
type ChainFetcher func(peerURL string) (chain []*blockchain.Block, reportedLength int, err error)

// SyncChain implements spec §4.8's sync_chain: fetch every peer's chain,
// keep the longest one that is strictly longer than ours, whose reported
// length matches its actual content, and that passes full validation, then
// replace atomically. Ties among peers are broken by iteration order (the
// first longest-valid candidate seen wins).
func (m *Manager) SyncChain(peers []string, fetch ChainFetcher) (replaced bool) {
	var best []*blockchain.Block

	m.mu.Lock()
	currentLen := len(m.chain)
	m.mu.Unlock()

	for _, peer := range peers {
		candidate, reportedLength, err := fetch(peer)
		if err != nil {
			logging.Network.Warn().Err(err).Str("peer", peer).Msg("sync: fetch failed")
			continue
		}
		if reportedLength != len(candidate) {
			logging.Network.Warn().Str("peer", peer).Int("reported_length", reportedLength).
				Int("actual_length", len(candidate)).Msg("sync: peer reported length does not match chain contents")
			continue
		}
		if len(candidate) <= currentLen {
			continue
		}
		if best != nil && len(candidate) <= len(best) {
			continue
		}
		if ok, reason := blockchain.IsValidChain(candidate); !ok {
			logging.Network.Warn().Str("peer", peer).Str("reason", reason).Msg("sync: peer chain invalid")
			continue
		}
		best = candidate
	}

	if best == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(best) <= len(m.chain) {
		return false
	}
	m.chain = best
	m.difficulty = m.lastBlock().Difficulty
	m.rebuildDerivedStateLocked()
	m.persistLocked()
	logging.Network.Info().Int("length", len(best)).Msg("sync: replaced chain")
	return true
}

// RebuildBalances forces a balance rebuild without any other chain
// mutation. Exposed for tests exercising spec §8's rebuild-idempotence
// property directly.
func (m *Manager) RebuildBalances() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuildDerivedStateLocked()
}

// Now is a seam for deterministic tests; production code calls
// time.Now().Unix() directly at the call sites that need it (mining,
// transaction timestamps) rather than through this function.
func Now() int64 { return time.Now().Unix() }
