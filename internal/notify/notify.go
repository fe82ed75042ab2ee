// Package notify fans domain events out to websocket clients and, when
// configured, to the MQTT broker.
package notify

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/models"
)

const (
	EventRequestCreated  = "request.created"
	EventRequestApproved = "request.approved"
	EventRequestRejected = "request.rejected"
	EventLowStock        = "inventory.low_stock"
	EventLowStockDigest  = "inventory.low_stock_digest"
	EventPromotionsEnded = "promotions.expired"
)

type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

type Hub interface {
	Send(userID string, message []byte) error
	SendToRole(role string, message []byte) int
}

type Publisher interface {
	Publish(event string, payload []byte) error
}

// Notifier delivers best effort: failures are logged, never returned.
type Notifier struct {
	hub       Hub
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

// New builds a Notifier. publisher may be nil when no broker is configured.
func New(hub Hub, publisher Publisher, logger *log.Logger) *Notifier {
	return &Notifier{hub: hub, publisher: publisher, logger: logger, now: time.Now}
}

func (n *Notifier) ToUser(userID, eventType string, data any) {
	msg, ok := n.encode(eventType, data)
	if !ok {
		return
	}
	if err := n.hub.Send(userID, msg); err != nil {
		n.logger.WithError(err).WithFields(log.Fields{"user": userID, "event": eventType}).Warn("websocket send failed")
	}
	n.publish(eventType, msg)
}

func (n *Notifier) ToRole(role models.Role, eventType string, data any) {
	msg, ok := n.encode(eventType, data)
	if !ok {
		return
	}
	sent := n.hub.SendToRole(string(role), msg)
	n.logger.WithFields(log.Fields{"role": role, "event": eventType, "clients": sent}).Debug("event sent to role")
	n.publish(eventType, msg)
}

func (n *Notifier) encode(eventType string, data any) ([]byte, bool) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data, At: n.now().UTC()})
	if err != nil {
		n.logger.WithError(err).WithField("event", eventType).Error("failed to encode event")
		return nil, false
	}
	return msg, true
}

func (n *Notifier) publish(eventType string, msg []byte) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(eventType, msg); err != nil {
		n.logger.WithError(err).WithField("event", eventType).Warn("mqtt publish failed")
	}
}
