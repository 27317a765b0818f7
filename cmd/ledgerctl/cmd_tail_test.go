package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/mocks"
	natsprovider "github.com/feral-file/ff-sale-ledger/internal/providers/jetstream"
)

func TestTailSubjects(t *testing.T) {
	assert.Equal(t, []string{"ledger.events.>"}, tailSubjects("ledger.events", nil))
	assert.Equal(t,
		[]string{"ledger.events.purchase", "ledger.events.staked"},
		tailSubjects("ledger.events", []string{"Purchase", "staked"}))
}

func TestTailPrintsMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	js := mocks.NewMockJetStream(ctrl)
	consumer := mocks.NewMockNatsConsumer(ctrl)
	cc := mocks.NewMockConsumeContext(ctrl)
	msg := mocks.NewMockJetStreamMessage(ctrl)

	cfg := natsprovider.Config{StreamName: "LEDGER_EVENTS", SubjectPrefix: "ledger.events"}
	ctx, cancel := context.WithCancel(context.Background())

	js.EXPECT().
		OrderedConsumer(gomock.Any(), "LEDGER_EVENTS", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, c jetstream.OrderedConsumerConfig) (adapter.Consumer, error) {
			assert.Equal(t, []string{"ledger.events.>"}, c.FilterSubjects)
			assert.Equal(t, jetstream.DeliverNewPolicy, c.DeliverPolicy)
			return consumer, nil
		})
	msg.EXPECT().Subject().Return("ledger.events.purchase")
	msg.EXPECT().Data().Return([]byte(`{"sequence":7}`))
	consumer.EXPECT().Consume(gomock.Any()).
		DoAndReturn(func(handler adapter.MessageHandler, _ ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
			handler(msg)
			cancel()
			return cc, nil
		})
	cc.EXPECT().Stop()

	var out bytes.Buffer
	require.NoError(t, tail(ctx, js, cfg, &out))
	assert.Equal(t, "ledger.events.purchase {\"sequence\":7}\n", out.String())
}
