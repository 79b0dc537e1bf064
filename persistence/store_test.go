package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/ledger"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockchain.json")
	store := NewStore(path)

	genesis := blockchain.NewGenesisBlock(1000, blockchain.InitialDifficulty)
	snap := ledger.Snapshot{
		Chain:           []*blockchain.Block{genesis},
		Balances:        map[string]float64{"alice": 100},
		Wallets:         map[string]string{"alice": "deadbeef"},
		PublicKeys:      map[string]string{"alice": "beefdead"},
		InitialBalances: map[string]float64{"alice": 100},
	}
	if err := store.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("expected load to succeed")
	}
	if len(loaded.Chain) != 1 || loaded.Chain[0].Hash != genesis.Hash {
		t.Fatalf("loaded chain mismatch: %+v", loaded.Chain)
	}
	if loaded.Balances["alice"] != 100 {
		t.Fatalf("balances mismatch: %+v", loaded.Balances)
	}
	if loaded.Wallets["alice"] != "deadbeef" {
		t.Fatalf("wallets mismatch: %+v", loaded.Wallets)
	}
}

func TestStoreLoadMissingFileReturnsFalse(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if _, ok := store.Load(); ok {
		t.Fatal("expected load of a missing file to report false")
	}
}

func TestStoreLoadDiscardsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockchain.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	store := NewStore(path)

	if _, ok := store.Load(); ok {
		t.Fatal("expected load of a corrupt file to report false")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected the corrupt file to have been removed")
	}
}

func TestStoreLoadDiscardsInvalidChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockchain.json")
	doc := document{
		Chain:      []*blockchain.Block{}, // an empty chain is never a valid chain
		Balances:   map[string]float64{},
		Wallets:    map[string]string{},
		PublicKeys: map[string]string{},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewStore(path)

	if _, ok := store.Load(); ok {
		t.Fatal("expected load of a document with an invalid chain to report false")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected the invalid-chain file to have been removed")
	}
}
