package broker

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	declareErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewRabbitPublisherWithChannel(ch, ExchangeOrders)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders_topic:topic"}, ch.declared)

	err = p.Publish(context.Background(), "order.confirmed", []byte(`{"id":1}`))
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{"orders_topic/order.confirmed"}, ch.keys)
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.JSONEq(t, `{"id":1}`, string(ch.published[0].Body))
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := NewRabbitPublisherWithChannel(ch, ExchangeOrders)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "order.served", []byte(`{}`))
	assert.ErrorContains(t, err, "order.served")
}

func TestRabbitPublisher_DeclareFailureClosesChannel(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := NewRabbitPublisherWithChannel(ch, ExchangeOrders)
	assert.Error(t, err)
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewRabbitPublisherWithChannel(ch, ExchangeOrders)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
