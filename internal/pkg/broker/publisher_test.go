package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(zap.NewNop(), w)
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), []*contracts.OutboxEvent{
		{EventID: "e1", EventType: "order.created", AggregateID: "o1", Payload: `{"order_id":"o1"}`, CreatedAt: at},
		{EventID: "e2", EventType: "notification.order_created", AggregateID: "c1", Payload: `{}`, CreatedAt: at},
	})
	require.NoError(t, err)

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("o1"), w.msgs[0].Key)
	assert.Equal(t, []byte(`{"order_id":"o1"}`), w.msgs[0].Value)
	assert.Equal(t, kafka.Header{Key: "event_type", Value: []byte("order.created")}, w.msgs[0].Headers[1])
	assert.Equal(t, at, w.msgs[1].Time)

	p.Close()
	assert.True(t, w.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	boom := errors.New("broker down")
	p := newPublisher(zap.NewNop(), &fakeWriter{err: boom})

	err := p.Publish(context.Background(), []*contracts.OutboxEvent{{EventID: "e1"}})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, p.Publish(context.Background(), nil))
}
