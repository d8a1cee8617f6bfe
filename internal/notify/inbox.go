package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/models"
)

// RecentLimit caps the alerts kept by an Inbox.
const RecentLimit = 20

// Inbox tracks unread alerts pushed over MQTT between list refreshes.
type Inbox struct {
	mu     sync.RWMutex
	unread int64
	recent []models.Alert
}

// NewInbox starts from the unread count last reported by the API.
func NewInbox(unread int64) *Inbox {
	if unread < 0 {
		unread = 0
	}
	return &Inbox{unread: unread}
}

// Deliver decodes one alert payload and records it, newest first.
func (i *Inbox) Deliver(payload []byte) (models.Alert, error) {
	var alert models.Alert
	if err := json.Unmarshal(payload, &alert); err != nil {
		return models.Alert{}, fmt.Errorf("decode alert: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if !alert.Read {
		i.unread++
	}
	i.recent = append([]models.Alert{alert}, i.recent...)
	if len(i.recent) > RecentLimit {
		i.recent = i.recent[:RecentLimit]
	}
	return alert, nil
}

// Unread returns the current unread count.
func (i *Inbox) Unread() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.unread
}

// Recent returns a copy of the buffered alerts, newest first.
func (i *Inbox) Recent() []models.Alert {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]models.Alert, len(i.recent))
	copy(out, i.recent)
	return out
}

// MarkRead decrements the counter for one alert read elsewhere.
func (i *Inbox) MarkRead() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.unread > 0 {
		i.unread--
	}
}

// Reset replaces the counter with a fresh value from the API.
func (i *Inbox) Reset(unread int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if unread < 0 {
		unread = 0
	}
	i.unread = unread
}

// Subscribe feeds inbox from topic until ctx is done. The client is disconnected on
// return, including when the subscription itself fails. onAlert, if
// set, runs after each delivered alert.
func Subscribe(ctx context.Context, client tokenClient, topic string, inbox *Inbox, onAlert func(models.Alert)) error {
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		alert, err := inbox.Deliver(msg.Payload())
		if err != nil {
			log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed alert")
			return
		}
		if onAlert != nil {
			onAlert(alert)
		}
	}

	defer client.Disconnect(250)
	if err := wait(ctx, client.Subscribe(topic, qos, handler)); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	<-ctx.Done()
	return ctx.Err()
}
