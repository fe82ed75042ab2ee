// Package broker publishes notification events to an MQTT broker.
package broker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/config"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	qosAtLeastOnce = 1
)

var ErrTimeout = errors.New("mqtt operation timed out")

type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	logger *log.Logger
}

// NewMQTTPublisher connects to cfg.Broker. Callers check cfg.Broker before calling.
func NewMQTTPublisher(cfg config.MQTTConfig, logger *log.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}

	logger.WithField("broker", cfg.Broker).Info("Connected to MQTT broker")
	return newPublisher(client, cfg.TopicPrefix, logger), nil
}

func newPublisher(client mqtt.Client, prefix string, logger *log.Logger) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(prefix, "/"), logger: logger}
}

// Topic returns "<prefix>/<event>" with dots in the event turned into levels.
func (p *MQTTPublisher) Topic(event string) string {
	return p.prefix + "/" + strings.ReplaceAll(event, ".", "/")
}

func (p *MQTTPublisher) Publish(event string, payload []byte) error {
	topic := p.Topic(event)
	token := p.client.Publish(topic, qosAtLeastOnce, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: %w", topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
