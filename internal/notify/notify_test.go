package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/aivodrive/internal/models"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func doneToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return qos }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeClient struct {
	mu           sync.Mutex
	published    [][]byte
	topic        string
	publishErr   error
	handler      mqtt.MessageHandler
	subscribed   chan struct{}
	subscribeErr error
	disconnected bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{subscribed: make(chan struct{})}
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = topic
	c.published = append(c.published, payload.([]byte))
	return doneToken(c.publishErr)
}

func (c *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	c.topic = topic
	c.handler = cb
	c.mu.Unlock()
	close(c.subscribed)
	return doneToken(c.subscribeErr)
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func (c *fakeClient) deliver(payload []byte) {
	c.mu.Lock()
	h, topic := c.handler, c.topic
	c.mu.Unlock()
	h(nil, fakeMessage{topic: topic, payload: payload})
}

func alertPayload(t *testing.T, a models.Alert) []byte {
	t.Helper()
	b, err := json.Marshal(a)
	require.NoError(t, err)
	return b
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := newFakeClient()
	pub := NewMQTTPublisher(client, "aivodrive/alerts")

	alert := models.Alert{Type: "trip", Title: "Trip cancelled", Priority: models.PriorityHigh}
	require.NoError(t, pub.Publish(context.Background(), alert))

	require.Len(t, client.published, 1)
	assert.Equal(t, "aivodrive/alerts", client.topic)
	var got models.Alert
	require.NoError(t, json.Unmarshal(client.published[0], &got))
	assert.Equal(t, "Trip cancelled", got.Title)

	pub.Close()
	assert.True(t, client.disconnected)
}

func TestMQTTPublisher_Errors(t *testing.T) {
	client := newFakeClient()
	client.publishErr = errors.New("broker gone")
	assert.EqualError(t, NewMQTTPublisher(client, "t").Publish(context.Background(), models.Alert{}), "broker gone")

	assert.ErrorIs(t, NewMQTTPublisher(nil, "t").Publish(context.Background(), models.Alert{}), ErrNotConnected)
}

func TestWait_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pending := &fakeToken{done: make(chan struct{})}
	assert.ErrorIs(t, wait(ctx, pending), context.Canceled)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), models.Alert{}))
}

func TestInbox_Deliver(t *testing.T) {
	inbox := NewInbox(2)

	_, err := inbox.Deliver(alertPayload(t, models.Alert{Title: "one"}))
	require.NoError(t, err)
	_, err = inbox.Deliver(alertPayload(t, models.Alert{Title: "two", Read: true}))
	require.NoError(t, err)

	assert.Equal(t, int64(3), inbox.Unread())
	recent := inbox.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Title)

	_, err = inbox.Deliver([]byte("not json"))
	assert.Error(t, err)
	assert.Equal(t, int64(3), inbox.Unread())
}

func TestInbox_CountersNeverNegative(t *testing.T) {
	inbox := NewInbox(-5)
	assert.Equal(t, int64(0), inbox.Unread())
	inbox.MarkRead()
	assert.Equal(t, int64(0), inbox.Unread())

	inbox.Reset(4)
	inbox.MarkRead()
	assert.Equal(t, int64(3), inbox.Unread())
}

func TestInbox_RecentIsCapped(t *testing.T) {
	inbox := NewInbox(0)
	for i := 0; i < RecentLimit+5; i++ {
		_, err := inbox.Deliver(alertPayload(t, models.Alert{Title: "a"}))
		require.NoError(t, err)
	}
	assert.Len(t, inbox.Recent(), RecentLimit)
	assert.Equal(t, int64(RecentLimit+5), inbox.Unread())
}

func TestSubscribe_FeedsInbox(t *testing.T) {
	client := newFakeClient()
	inbox := NewInbox(0)
	ctx, cancel := context.WithCancel(context.Background())

	received := make(chan models.Alert, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- Subscribe(ctx, client, "aivodrive/alerts", inbox, func(a models.Alert) { received <- a })
	}()

	<-client.subscribed
	client.deliver([]byte("garbage"))
	client.deliver(alertPayload(t, models.Alert{Title: "Maintenance completed"}))

	select {
	case a := <-received:
		assert.Equal(t, "Maintenance completed", a.Title)
	case <-time.After(time.Second):
		t.Fatal("alert not delivered")
	}
	assert.Equal(t, int64(1), inbox.Unread())

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	client.mu.Lock()
	defer client.mu.Unlock()
	assert.True(t, client.disconnected)
}

func TestSubscribe_FailureDisconnects(t *testing.T) {
	client := newFakeClient()
	client.subscribeErr = errors.New("not authorized")

	err := Subscribe(context.Background(), client, "aivodrive/alerts", NewInbox(0), nil)

	assert.ErrorContains(t, err, "not authorized")
	client.mu.Lock()
	defer client.mu.Unlock()
	assert.True(t, client.disconnected)
}
