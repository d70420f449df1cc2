package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestProducer_PublishFunnelSend(t *testing.T) {
	pub := &fakePublisher{}
	p := &Producer{ch: pub}
	claimed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := p.PublishFunnelSend(context.Background(), usecase.FunnelSendPayload{
		EnrollmentID: "enr-1",
		FunnelID:     "f-1",
		LeadID:       "l-1",
		Phase:        2,
		ClaimedAt:    claimed,
	})

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "enr-1:2", pub.msg.MessageId)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, "enr-1", decoded["enrollment_id"])
	assert.EqualValues(t, 2, decoded["phase"])
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{ch: &fakePublisher{err: amqp.ErrClosed}}

	err := p.PublishFunnelSend(context.Background(), usecase.FunnelSendPayload{EnrollmentID: "x", Phase: 1})

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

type fakeDeclarer struct {
	queues   map[string]amqp.Table
	bindings []string
}

func (f *fakeDeclarer) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (f *fakeDeclarer) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	if f.queues == nil {
		f.queues = map[string]amqp.Table{}
	}
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeDeclarer) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.bindings = append(f.bindings, exchange+"->"+name+":"+key)
	return nil
}

func TestSetupTopology(t *testing.T) {
	d := &fakeDeclarer{}

	require.NoError(t, setupTopology(d))

	assert.Equal(t, DLXName, d.queues[QueueName]["x-dead-letter-exchange"])
	assert.Nil(t, d.queues[DLQName])
	assert.Equal(t, []string{
		DLXName + "->" + DLQName + ":" + RoutingKey,
		ExchangeName + "->" + QueueName + ":" + RoutingKey,
	}, d.bindings)
}

type fakeAcknowledger struct {
	acked, nacked, requeued bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error { f.acked = true; return nil }
func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}
func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

type mockHandler struct{ mock.Mock }

func (m *mockHandler) Execute(ctx context.Context, payload usecase.FunnelSendPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func delivery(t *testing.T, body any) (amqp.Delivery, *fakeAcknowledger) {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	ack := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: ack, Body: raw}, ack
}

func TestWorker_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("acks processed sends", func(t *testing.T) {
		h := new(mockHandler)
		h.On("Execute", ctx, usecase.FunnelSendPayload{EnrollmentID: "e1", Phase: 1}).Return(nil)
		w := &Worker{handler: h, logger: zap.NewNop()}
		d, ack := delivery(t, usecase.FunnelSendPayload{EnrollmentID: "e1", Phase: 1})

		w.handle(ctx, d)

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("dead letters failed sends", func(t *testing.T) {
		h := new(mockHandler)
		h.On("Execute", ctx, mock.Anything).Return(errors.New("smtp down"))
		w := &Worker{handler: h, logger: zap.NewNop()}
		d, ack := delivery(t, usecase.FunnelSendPayload{EnrollmentID: "e1", Phase: 1})

		w.handle(ctx, d)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})

	t.Run("dead letters malformed bodies", func(t *testing.T) {
		h := new(mockHandler)
		w := &Worker{handler: h, logger: zap.NewNop()}
		d, ack := delivery(t, []byte("{not json"))

		w.handle(ctx, d)

		assert.True(t, ack.nacked)
		h.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
}

func (f *fakeConsumer) ConsumeWithContext(context.Context, string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.msgs, nil
}

func TestWorker_StartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	processed := make(chan struct{})
	h := new(mockHandler)
	h.On("Execute", mock.Anything, mock.Anything).Run(func(mock.Arguments) { close(processed) }).Return(nil)
	msgs := make(chan amqp.Delivery, 1)
	w := &Worker{channel: &fakeConsumer{msgs: msgs}, handler: h, logger: zap.NewNop()}

	d, ack := delivery(t, usecase.FunnelSendPayload{EnrollmentID: "e1", Phase: 1})
	msgs <- d

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	select {
	case <-processed:
	case <-time.After(time.Second):
		t.Fatal("message was not processed")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, ack.acked)
}

func TestWorker_StartFailsWhenChannelCloses(t *testing.T) {
	msgs := make(chan amqp.Delivery)
	close(msgs)
	w := &Worker{channel: &fakeConsumer{msgs: msgs}, handler: new(mockHandler), logger: zap.NewNop()}

	err := w.Start(context.Background(), QueueName)

	assert.Error(t, err)
}
