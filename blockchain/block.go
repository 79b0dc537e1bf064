package blockchain

import "encoding/json"

// GenesisPreviousHash is the sentinel previous-hash value carried by the
// genesis block only.
const GenesisPreviousHash = "0"

// GenesisMiner is the free-form miner identifier stamped on the genesis block.
const GenesisMiner = "genesis"

/*
Block is one entry in the chain: a header plus its ordered transaction
list. For every non-genesis block, Transactions holds exactly one user
transaction followed by exactly one COINBASE reward transaction (spec §3).

Hash and MerkleRoot are derived fields recomputed by RecomputeHash (and
set by NewGenesisBlock and MineBlock);
they are carried on the struct because they are part of the wire form and
because recomputing them on every read would be wasteful.
*/
type Block struct {
	Height       int            `json:"height"`
	PreviousHash string         `json:"previous_hash"`
	Timestamp    int64          `json:"timestamp"`
	Difficulty   int            `json:"difficulty"`
	Nonce        int64          `json:"nonce"`
	MinedBy      string         `json:"mined_by"`
	Transactions []*Transaction `json:"transactions"`
	MerkleRoot   string         `json:"merkle_root"`
	Hash         string         `json:"hash"`
}

// canonicalMap returns the block's canonical dict form used for hashing
// (spec §4.1): every field except Hash, nested transactions in their full
// (signed) dict form, all keyed for map[string]any -> json.Marshal so keys
// come out sorted with no insignificant whitespace.
func (b *Block) canonicalMap() map[string]any {
	txs := make([]json.RawMessage, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = json.RawMessage(tx.FullDictBytes())
	}
	return map[string]any{
		"mined_by":      b.MinedBy,
		"transactions":  txs,
		"height":        b.Height,
		"difficulty":    b.Difficulty,
		"previous_hash": b.PreviousHash,
		"nonce":         b.Nonce,
		"timestamp":     b.Timestamp,
		"merkle_root":   b.MerkleRoot,
	}
}

// CanonicalBytes returns the canonical bytes the block hash is computed over.
func (b *Block) CanonicalBytes() []byte {
	m, _ := json.Marshal(b.canonicalMap())
	return m
}

// RecomputeHash fills MerkleRoot from the current transaction list and
// returns what Hash should be for the block's current contents. It does not
// mutate Hash — callers decide when to accept the recomputed value.
func (b *Block) RecomputeHash() string {
	b.MerkleRoot = MerkleRoot(b.Transactions)
	return Sha256Hex(b.CanonicalBytes())
}

// NewGenesisBlock builds the height-0 block. Its hash is computed and
// assigned immediately: genesis is never mined, so there is no PoW search.
func NewGenesisBlock(timestamp int64, difficulty int) *Block {
	b := &Block{
		Height:       0,
		PreviousHash: GenesisPreviousHash,
		Timestamp:    timestamp,
		Difficulty:   difficulty,
		Nonce:        0,
		MinedBy:      GenesisMiner,
		Transactions: nil,
	}
	b.Hash = b.RecomputeHash()
	return b
}
