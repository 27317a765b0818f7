package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/mocks"
)

type testDeps struct {
	source    *mocks.MockEventSource
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
}

func setup(t *testing.T) (*testDeps, context.Context) {
	ctrl := gomock.NewController(t)
	return &testDeps{
		source:    mocks.NewMockEventSource(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}, context.Background()
}

func testEvents(seqs ...uint64) []domain.Event {
	events := make([]domain.Event, 0, len(seqs))
	for _, seq := range seqs {
		events = append(events, domain.Event{
			Sequence:  seq,
			EventBody: domain.EventBody{ID: "ev", Type: domain.EventTransfer},
		})
	}
	return events
}

func TestRunOnce_PublishesAndMarks(t *testing.T) {
	deps, ctx := setup(t)
	now := time.Unix(1_700_000_000, 0)
	events := testEvents(1, 2, 3)

	deps.source.EXPECT().UnpublishedEvents(ctx, 10).Return(events, nil)
	gomock.InOrder(
		deps.publisher.EXPECT().PublishEvent(ctx, events[0]).Return(nil),
		deps.publisher.EXPECT().PublishEvent(ctx, events[1]).Return(nil),
		deps.publisher.EXPECT().PublishEvent(ctx, events[2]).Return(nil),
	)
	deps.clock.EXPECT().Now().Return(now)
	deps.source.EXPECT().MarkEventsPublished(ctx, []uint64{1, 2, 3}, now).Return(nil)

	r := New(deps.source, deps.publisher, deps.clock, Config{BatchSize: 10})
	n, err := r.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRunOnce_Empty(t *testing.T) {
	deps, ctx := setup(t)
	deps.source.EXPECT().UnpublishedEvents(ctx, 100).Return(nil, nil)

	r := New(deps.source, deps.publisher, deps.clock, Config{})
	n, err := r.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRunOnce_RetriesTransientFailure(t *testing.T) {
	deps, ctx := setup(t)
	now := time.Unix(1_700_000_000, 0)
	events := testEvents(7)

	deps.source.EXPECT().UnpublishedEvents(ctx, 10).Return(events, nil)
	gomock.InOrder(
		deps.publisher.EXPECT().PublishEvent(ctx, events[0]).Return(errors.New("nats: timeout")),
		deps.publisher.EXPECT().PublishEvent(ctx, events[0]).Return(nil),
	)
	deps.clock.EXPECT().Now().Return(now)
	deps.source.EXPECT().MarkEventsPublished(ctx, []uint64{7}, now).Return(nil)

	r := New(deps.source, deps.publisher, deps.clock, Config{
		BatchSize:       10,
		MaxElapsedTime:  time.Second,
		InitialInterval: time.Millisecond,
	})
	n, err := r.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunOnce_StopsAtFirstUndeliverableEvent(t *testing.T) {
	deps, ctx := setup(t)
	now := time.Unix(1_700_000_000, 0)
	events := testEvents(1, 2, 3)

	deps.source.EXPECT().UnpublishedEvents(ctx, 10).Return(events, nil)
	deps.publisher.EXPECT().PublishEvent(ctx, events[0]).Return(nil)
	deps.publisher.EXPECT().PublishEvent(ctx, events[1]).Return(errors.New("stream not found")).MinTimes(1)
	deps.clock.EXPECT().Now().Return(now)
	deps.source.EXPECT().MarkEventsPublished(ctx, []uint64{1}, now).Return(nil)

	r := New(deps.source, deps.publisher, deps.clock, Config{
		BatchSize:       10,
		MaxElapsedTime:  20 * time.Millisecond,
		InitialInterval: time.Millisecond,
	})
	n, err := r.RunOnce(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event 2")
	assert.Equal(t, 1, n)
}

func TestRunOnce_SourceError(t *testing.T) {
	deps, ctx := setup(t)
	deps.source.EXPECT().UnpublishedEvents(ctx, 10).Return(nil, errors.New("connection refused"))

	r := New(deps.source, deps.publisher, deps.clock, Config{BatchSize: 10})
	_, err := r.RunOnce(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load unpublished events")
}

func TestRun_StopsOnCancel(t *testing.T) {
	deps, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps.publisher.EXPECT().EnsureStream(ctx).Return(nil)
	deps.source.EXPECT().UnpublishedEvents(ctx, 10).Return(nil, nil)
	deps.clock.EXPECT().After(time.Second).DoAndReturn(func(time.Duration) <-chan time.Time {
		cancel()
		return make(chan time.Time)
	})

	r := New(deps.source, deps.publisher, deps.clock, Config{BatchSize: 10, PollInterval: time.Second})
	err := r.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EnsureStreamError(t *testing.T) {
	deps, ctx := setup(t)
	deps.publisher.EXPECT().EnsureStream(ctx).Return(errors.New("jetstream not enabled"))

	r := New(deps.source, deps.publisher, deps.clock, Config{})
	err := r.Run(ctx)

	require.Error(t, err)
}
