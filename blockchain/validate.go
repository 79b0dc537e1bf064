package blockchain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel validation errors, checked with errors.Is at the API boundary
// (spec §7: ValidationError surfaces as 400 to the originating API, or
// boolean false + a warning log for internal callers).
var (
	ErrEmptyChain        = errors.New("chain is empty")
	ErrBadGenesis        = errors.New("genesis block is malformed")
	ErrBadHash           = errors.New("block hash does not match its recomputed hash")
	ErrBadPreviousHash   = errors.New("block previous_hash does not match predecessor hash")
	ErrDifficultyNotMet  = errors.New("block hash does not meet the required difficulty")
	ErrBadHeightSequence = errors.New("block height does not follow its predecessor")
	ErrBadTimestamp      = errors.New("block timestamp does not strictly increase")
)

// ValidateTransactionSchema performs the structural checks spec §4.4 step 1
// requires before any cryptographic or balance check runs: required fields
// present, and semantically well-typed (a non-empty sender/recipient, a
// non-negative amount, a positive timestamp).
func ValidateTransactionSchema(tx *Transaction) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if tx.Sender == "" {
		return fmt.Errorf("transaction sender is required")
	}
	if tx.Recipient == "" {
		return fmt.Errorf("transaction recipient is required")
	}
	if tx.Amount < 0 {
		return fmt.Errorf("transaction amount must be non-negative, got %v", tx.Amount)
	}
	if tx.Timestamp <= 0 {
		return fmt.Errorf("transaction timestamp must be positive")
	}
	return nil
}

// ValidateBlockAgainstPredecessor applies rules 1-5 of spec §4.3 to block,
// relative to its immediate predecessor. It returns the first failing
// rule's error, or nil if block is valid.
func ValidateBlockAgainstPredecessor(block, predecessor *Block) error {
	if want := block.RecomputeHash(); block.Hash != want {
		return fmt.Errorf("%w: block #%d", ErrBadHash, block.Height)
	}
	if block.PreviousHash != predecessor.Hash {
		return fmt.Errorf("%w: block #%d", ErrBadPreviousHash, block.Height)
	}
	if !strings.HasPrefix(block.Hash, strings.Repeat("0", block.Difficulty)) {
		return fmt.Errorf("%w: block #%d", ErrDifficultyNotMet, block.Height)
	}
	if block.Height != predecessor.Height+1 {
		return fmt.Errorf("%w: block #%d", ErrBadHeightSequence, block.Height)
	}
	if block.Timestamp <= predecessor.Timestamp {
		return fmt.Errorf("%w: block #%d", ErrBadTimestamp, block.Height)
	}
	return nil
}

// ValidateGenesis checks the two constraints spec §4.3 rule 6 fixes for the
// height-0 block: height 0 and previous_hash "0". The hash-recompute check
// still applies to genesis (it is part of "every consumer of a block"); the
// difficulty-prefix and predecessor-linkage rules do not, since genesis has
// no predecessor (spec §4.7 only applies rules 1-5 starting at index 1).
func ValidateGenesis(block *Block) error {
	if block.Height != 0 || block.PreviousHash != GenesisPreviousHash {
		return ErrBadGenesis
	}
	if want := block.RecomputeHash(); block.Hash != want {
		return fmt.Errorf("%w: genesis", ErrBadHash)
	}
	return nil
}

// IsValidChain implements spec §4.7: non-empty, a well-formed genesis, and
// every subsequent block satisfying rules 1-5 relative to its predecessor.
// It returns (true, "OK") on success, or (false, reason) for the first rule
// that fails.
func IsValidChain(chain []*Block) (bool, string) {
	if len(chain) == 0 {
		return false, ErrEmptyChain.Error()
	}
	if err := ValidateGenesis(chain[0]); err != nil {
		return false, err.Error()
	}
	for i := 1; i < len(chain); i++ {
		if err := ValidateBlockAgainstPredecessor(chain[i], chain[i-1]); err != nil {
			return false, err.Error()
		}
	}
	return true, "OK"
}
