package blockchain

import (
	"encoding/json"
	"testing"
)

func TestNewGenesisBlock(t *testing.T) {
	g := NewGenesisBlock(1000, InitialDifficulty)
	if g.Height != 0 {
		t.Fatalf("genesis height = %d, want 0", g.Height)
	}
	if g.PreviousHash != GenesisPreviousHash {
		t.Fatalf("genesis previous_hash = %q, want %q", g.PreviousHash, GenesisPreviousHash)
	}
	if g.Hash != g.RecomputeHash() {
		t.Fatal("genesis hash must equal its own recomputed hash")
	}
}

func TestBlockRecomputeHashDeterministic(t *testing.T) {
	last := NewGenesisBlock(1000, InitialDifficulty)
	block := MineBlock(last, nil, "miner-address", 1, 1001)
	if block.Hash != block.RecomputeHash() {
		t.Fatal("mined block hash must match its recomputed hash")
	}
}

// Round-trip property (spec §8): serialize -> deserialize preserves hash.
func TestBlockRoundTripPreservesHash(t *testing.T) {
	last := NewGenesisBlock(1000, InitialDifficulty)
	block := MineBlock(last, nil, "miner-address", 1, 1001)

	data, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round Block
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round.Hash != block.Hash {
		t.Fatalf("round-tripped hash = %s, want %s", round.Hash, block.Hash)
	}
	if round.RecomputeHash() != block.Hash {
		t.Fatal("round-tripped block must recompute to the same hash")
	}
}
