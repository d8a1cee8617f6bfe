// Package notify carries alerts over MQTT: the API server publishes each alert it
// raises, and terminal clients subscribe to keep an unread counter current.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/models"
)

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrTimeout      = errors.New("mqtt operation timed out")
)

const (
	// QoS 1: alerts are delivered at least once.
	qos            = 1
	defaultTimeout = 5 * time.Second
)

// Publisher sends alerts to subscribers.
type Publisher interface {
	Publish(ctx context.Context, alert models.Alert) error
}

// NopPublisher drops every alert. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.Alert) error { return nil }

// tokenClient is the subset of mqtt.Client used here.
type tokenClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

// Connect opens an MQTT connection to broker.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	if err := wait(context.Background(), client.Connect()); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	log.WithFields(log.Fields{"broker": broker, "client_id": clientID}).Info("Connected to MQTT broker")
	return client, nil
}

// MQTTPublisher publishes alerts as JSON on a single topic.
type MQTTPublisher struct {
	client tokenClient
	topic  string
}

// NewMQTTPublisher creates a publisher on an established client.
func NewMQTTPublisher(client tokenClient, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

func (p *MQTTPublisher) Publish(ctx context.Context, alert models.Alert) error {
	if p.client == nil {
		return ErrNotConnected
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	return wait(ctx, p.client.Publish(p.topic, qos, false, payload))
}

// Close disconnects, allowing in-flight messages 250ms to drain.
func (p *MQTTPublisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
}

func wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(defaultTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
