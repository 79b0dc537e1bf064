package persistence

import (
	"path/filepath"
	"testing"

	"github.com/kilimba-labs/ledgerchain/blockchain"
)

func TestSigIndexRecordAndHas(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sigindex")
	idx := OpenSigIndex(dir)
	defer idx.Close()

	if idx.Has("abc123") {
		t.Fatal("expected a fresh index to report no signatures")
	}
	idx.Record("abc123", 1)
	if !idx.Has("abc123") {
		t.Fatal("expected the recorded signature to be found")
	}
	if idx.Has("other") {
		t.Fatal("expected an unrecorded signature to report false")
	}
}

func TestSigIndexRebuildSkipsCoinbase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sigindex")
	idx := OpenSigIndex(dir)
	defer idx.Close()

	genesis := blockchain.NewGenesisBlock(1000, blockchain.InitialDifficulty)
	tx := blockchain.NewTransaction("alice-pub", "bob-pub", 5, 1001)
	tx.Signature = "sig-1"
	block := blockchain.MineBlock(genesis, []*blockchain.Transaction{tx}, "miner", genesis.Difficulty, 1002)

	idx.Rebuild([]*blockchain.Block{genesis, block})

	if !idx.Has("sig-1") {
		t.Fatal("expected the ordinary transaction's signature to be indexed")
	}
	for _, coinbaseTx := range block.Transactions {
		if coinbaseTx.IsCoinbase() && idx.Has(coinbaseTx.Signature) {
			t.Fatal("coinbase transactions must never be indexed by signature")
		}
	}
}

func TestSigIndexRebuildClearsStaleEntries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sigindex")
	idx := OpenSigIndex(dir)
	defer idx.Close()

	idx.Record("stale-sig", 1)
	genesis := blockchain.NewGenesisBlock(1000, blockchain.InitialDifficulty)
	idx.Rebuild([]*blockchain.Block{genesis})

	if idx.Has("stale-sig") {
		t.Fatal("expected rebuild to discard signatures no longer present in the chain")
	}
}

func TestSigIndexInMemoryFallback(t *testing.T) {
	idx := &SigIndex{mem: make(map[string]int)}
	defer idx.Close()

	idx.Record("x", 1)
	if !idx.Has("x") {
		t.Fatal("expected in-memory fallback to record and report signatures")
	}
}
