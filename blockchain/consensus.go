package blockchain

import "strings"

// Consensus-wide constants (spec §6).
const (
	// Reward is the fixed COINBASE amount paid to the miner of each
	// non-genesis block.
	Reward = 10.0

	// InitialDifficulty is the difficulty new chains start at.
	InitialDifficulty = 4

	// TargetBlockTimeSeconds is the desired average time between blocks.
	TargetBlockTimeSeconds = 10

	// AdjustmentInterval is the number of blocks the retarget window covers.
	AdjustmentInterval = 10

	// MinDifficulty is the floor difficulty never adjusted below.
	MinDifficulty = 1
)

/*
MineBlock performs the Hashcash-style proof-of-work search described in
spec §4.3: append a COINBASE reward transaction, then search nonces from 0
upward until the block's hash begins with `difficulty` hex '0' characters.

The search is deterministic given its inputs and is run to completion on the
caller's goroutine — spec requires only that the first valid nonce found is
returned, not any particular parallelization strategy.
*/
func MineBlock(lastBlock *Block, txs []*Transaction, minerAddress string, difficulty int, now int64) *Block {
	reward := NewTransaction(CoinbaseSender, minerAddress, Reward, now)
	allTxs := make([]*Transaction, 0, len(txs)+1)
	allTxs = append(allTxs, txs...)
	allTxs = append(allTxs, reward)

	b := &Block{
		Height:       lastBlock.Height + 1,
		PreviousHash: lastBlock.Hash,
		Timestamp:    now,
		Difficulty:   difficulty,
		MinedBy:      minerAddress,
		Transactions: allTxs,
	}

	prefix := strings.Repeat("0", difficulty)
	for nonce := int64(0); ; nonce++ {
		b.Nonce = nonce
		hash := b.RecomputeHash()
		if strings.HasPrefix(hash, prefix) {
			b.Hash = hash
			return b
		}
	}
}

/*
AdjustDifficulty applies the retarget rule (spec §4.3) to the difficulty
that should govern the NEXT block, given the chain as it stands immediately
after appending latest.

Below AdjustmentInterval+1 blocks, there isn't yet a full window to measure,
so the difficulty is left unchanged. Otherwise the elapsed time across the
last AdjustmentInterval blocks is compared against the expected time: too
fast tightens by one, too slow loosens by one (never below MinDifficulty),
anything in between is unchanged. This runs after every appended block, not
only at interval boundaries.
*/
func AdjustDifficulty(chain []*Block) int {
	n := len(chain)
	if n == 0 {
		return InitialDifficulty
	}
	latest := chain[n-1]
	if n < AdjustmentInterval+1 {
		return latest.Difficulty
	}

	windowStart := chain[n-AdjustmentInterval-1]
	actual := latest.Timestamp - windowStart.Timestamp
	expected := int64(AdjustmentInterval * TargetBlockTimeSeconds)

	difficulty := latest.Difficulty
	switch {
	case actual < expected/2:
		difficulty++
	case actual > expected*2 && difficulty > MinDifficulty:
		difficulty--
	}
	return difficulty
}
