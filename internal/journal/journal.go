package journal

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

// Hasher computes the chained hash of ledger events
type Hasher struct {
	jcs adapter.JCS
}

// NewHasher creates a hasher over RFC 8785 canonical JSON
func NewHasher(jcs adapter.JCS) *Hasher {
	return &Hasher{jcs: jcs}
}

// Hash returns keccak256(prev || canonical(body))
func (h *Hasher) Hash(prev common.Hash, body domain.EventBody) (common.Hash, error) {
	canonical, err := h.jcs.Canonicalize(body)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to canonicalize event %s: %w", body.ID, err)
	}
	return crypto.Keccak256Hash(prev.Bytes(), canonical), nil
}

// Chain links bodies after the event (lastSeq, lastHash), assigning sequences and hashes
func (h *Hasher) Chain(lastSeq uint64, lastHash common.Hash, bodies []domain.EventBody) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(bodies))
	prev := lastHash
	for i, body := range bodies {
		hash, err := h.Hash(prev, body)
		if err != nil {
			return nil, err
		}
		events = append(events, domain.Event{
			Sequence:  lastSeq + uint64(i) + 1,
			EventBody: body,
			PrevHash:  prev,
			Hash:      hash,
		})
		prev = hash
	}
	return events, nil
}

// ChainError describes the first broken link found by Verify
type ChainError struct {
	Sequence uint64
	Reason   string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("journal broken at sequence %d: %s", e.Sequence, e.Reason)
}

// Verify checks that events continue the chain ending at (lastSeq, lastHash).
// It returns the new chain head.
func (h *Hasher) Verify(lastSeq uint64, lastHash common.Hash, events []domain.Event) (uint64, common.Hash, error) {
	for _, e := range events {
		if e.Sequence != lastSeq+1 {
			return lastSeq, lastHash, &ChainError{Sequence: e.Sequence, Reason: fmt.Sprintf("expected sequence %d", lastSeq+1)}
		}
		if e.PrevHash != lastHash {
			return lastSeq, lastHash, &ChainError{Sequence: e.Sequence, Reason: "previous hash mismatch"}
		}
		hash, err := h.Hash(e.PrevHash, e.EventBody)
		if err != nil {
			return lastSeq, lastHash, err
		}
		if hash != e.Hash {
			return lastSeq, lastHash, &ChainError{Sequence: e.Sequence, Reason: "payload hash mismatch"}
		}
		lastSeq, lastHash = e.Sequence, e.Hash
	}
	return lastSeq, lastHash, nil
}
