package journal

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/mocks"
)

func bodies() []domain.EventBody {
	return []domain.EventBody{
		{ID: "01A", Type: domain.EventTransfer, Token: domain.TokenMain, From: "0x1", To: "0x2", Amount: "5", Timestamp: 100},
		{ID: "01B", Type: domain.EventPause, Token: domain.TokenMain, Timestamp: 101},
		{ID: "01C", Type: domain.EventReferral, To: "0x3", Amount: "7", Timestamp: 102},
	}
}

func TestChainAndVerify(t *testing.T) {
	h := NewHasher(adapter.NewJCS())

	events, err := h.Chain(0, common.Hash{}, bodies())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(1), events[0].Sequence)
	assert.Equal(t, common.Hash{}, events[0].PrevHash)
	assert.Equal(t, events[0].Hash, events[1].PrevHash)
	assert.Equal(t, events[1].Hash, events[2].PrevHash)

	seq, head, err := h.Verify(0, common.Hash{}, events)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
	assert.Equal(t, events[2].Hash, head)

	// continuing a chain is equivalent to building it in one pass
	first, err := h.Chain(0, common.Hash{}, bodies()[:1])
	require.NoError(t, err)
	rest, err := h.Chain(first[0].Sequence, first[0].Hash, bodies()[1:])
	require.NoError(t, err)
	assert.Equal(t, events[2].Hash, rest[1].Hash)
}

func TestVerifyDetectsTampering(t *testing.T) {
	h := NewHasher(adapter.NewJCS())
	events, err := h.Chain(0, common.Hash{}, bodies())
	require.NoError(t, err)

	tampered := append([]domain.Event(nil), events...)
	tampered[1].Amount = "999"
	_, _, err = h.Verify(0, common.Hash{}, tampered)
	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, uint64(2), chainErr.Sequence)

	gap := []domain.Event{events[0], events[2]}
	_, _, err = h.Verify(0, common.Hash{}, gap)
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, uint64(3), chainErr.Sequence)
}

func TestHashCanonicalizationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jcs := mocks.NewMockJCS(ctrl)
	jcs.EXPECT().Canonicalize(gomock.Any()).Return(nil, errors.New("bad json"))

	_, err := NewHasher(jcs).Hash(common.Hash{}, bodies()[0])
	assert.ErrorContains(t, err, "bad json")
}
