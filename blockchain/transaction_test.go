package blockchain

import (
	"encoding/json"
	"testing"
)

func signedTx(t *testing.T, sender, senderPriv, recipient string, amount float64, ts int64) *Transaction {
	t.Helper()
	tx := NewTransaction(sender, recipient, amount, ts)
	if err := tx.Sign(senderPriv); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tx
}

func TestTransactionSignAndVerify(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	tx := signedTx(t, pub, priv, "recipient-pubkey", 10, 1000)
	if !tx.Verify() {
		t.Fatal("expected signature to verify")
	}
}

func TestTransactionVerifyFailsOnTamper(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	tx := signedTx(t, pub, priv, "recipient-pubkey", 10, 1000)
	tx.Amount = 999
	if tx.Verify() {
		t.Fatal("expected verification to fail after tampering with amount")
	}
}

func TestTransactionMissingSignatureNeverVerifies(t *testing.T) {
	tx := NewTransaction("sender", "recipient", 5, 100)
	if tx.Verify() {
		t.Fatal("unsigned transaction must not verify")
	}
}

func TestTransactionIsCoinbase(t *testing.T) {
	tx := NewTransaction(CoinbaseSender, "miner", Reward, 100)
	if !tx.IsCoinbase() {
		t.Fatal("expected IsCoinbase to be true for COINBASE sender")
	}
	regular := NewTransaction("alice", "bob", 1, 100)
	if regular.IsCoinbase() {
		t.Fatal("expected IsCoinbase to be false for a regular sender")
	}
}

func TestTransactionCanonicalBytesSortedKeysNoWhitespace(t *testing.T) {
	tx := NewTransaction("alice", "bob", 12.5, 42)
	b := tx.CanonicalBytes()
	want := `{"amount":12.5,"recipient":"bob","sender":"alice","timestamp":42}`
	if string(b) != want {
		t.Fatalf("canonical bytes = %s, want %s", b, want)
	}
}

// Round-trip property (spec §8): serialize -> deserialize yields an equal
// transaction and preserves signature verification.
func TestTransactionRoundTripPreservesVerification(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	tx := signedTx(t, pub, priv, "recipient-pubkey", 10, 1000)

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round Transaction
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round.Sender != tx.Sender || round.Recipient != tx.Recipient || round.Amount != tx.Amount || round.Timestamp != tx.Timestamp || round.Signature != tx.Signature {
		t.Fatalf("round-tripped transaction differs: got %+v, want %+v", round, tx)
	}
	if !round.Verify() {
		t.Fatal("round-tripped transaction should still verify")
	}
}
