package blockchain

import (
	"encoding/json"
	"fmt"
)

/*
Transaction is a signed value transfer between two accounts, or — when
Sender is the literal string "COINBASE" — the unsigned mining-reward
transaction a miner appends to the end of a block's transaction list.

The canonical byte form a signature is computed over, and the form the
Merkle root and block hash are computed over, are both fixed by the
network: every node MUST reproduce the same bytes for the same transaction,
or hashes stop matching across nodes. See CanonicalBytes and FullDictBytes.
*/
type Transaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
	Signature string  `json:"signature,omitempty"`
}

// NewTransaction builds an unsigned transaction stamped with the given time.
// Callers sign it with Sign before broadcasting or admitting it.
func NewTransaction(sender, recipient string, amount float64, timestamp int64) *Transaction {
	return &Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

// IsCoinbase reports whether tx is a mining-reward transaction.
func (tx *Transaction) IsCoinbase() bool {
	return tx.Sender == CoinbaseSender
}

// unsignedMap returns the four fields the signature is computed over, keyed
// for map[string]any -> json.Marshal, which sorts map keys lexicographically
// and emits no insignificant whitespace — exactly the "UTF-8 of the JSON
// object with sorted keys, no whitespace" canonical form spec §4.1 requires,
// without needing a bespoke canonical-JSON encoder.
func (tx *Transaction) unsignedMap() map[string]any {
	return map[string]any{
		"sender":    tx.Sender,
		"recipient": tx.Recipient,
		"amount":    tx.Amount,
		"timestamp": tx.Timestamp,
	}
}

// CanonicalBytes returns the canonical bytes a signature is produced and
// verified over: the transaction's four non-signature fields, sorted keys,
// no whitespace.
func (tx *Transaction) CanonicalBytes() []byte {
	b, _ := json.Marshal(tx.unsignedMap())
	return b
}

// FullDictBytes returns the canonical bytes of the transaction's complete
// dict form, including its signature (or a JSON null when absent). This is
// the form Merkle leaves and block canonical bytes are built from.
func (tx *Transaction) FullDictBytes() []byte {
	m := tx.unsignedMap()
	if tx.Signature != "" {
		m["signature"] = tx.Signature
	} else {
		m["signature"] = nil
	}
	b, _ := json.Marshal(m)
	return b
}

// Hash returns the hex SHA-256 digest of the transaction's full dict form.
// It is not itself a wire field; the mempool and the signature index key
// transactions by Signature, not by this hash.
func (tx *Transaction) Hash() string {
	return Sha256Hex(tx.FullDictBytes())
}

// Sign computes tx.Signature = Ed25519-sign(CanonicalBytes, privateKeyHex).
func (tx *Transaction) Sign(privateKeyHex string) error {
	sig, err := signHex(privateKeyHex, tx.CanonicalBytes())
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	tx.Signature = sig
	return nil
}

// Verify reports whether tx.Signature is a valid Ed25519 signature over
// tx.CanonicalBytes() under tx.Sender. A missing signature is never valid.
// Verify is never called on COINBASE transactions — they carry no signature
// by construction.
func (tx *Transaction) Verify() bool {
	if tx.Signature == "" {
		return false
	}
	return verifyHex(tx.Sender, tx.CanonicalBytes(), tx.Signature)
}
