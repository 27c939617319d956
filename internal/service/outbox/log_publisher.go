package outbox

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// LogPublisher пишет события в лог; используется, когда брокер не настроен.
type LogPublisher struct {
	logger *log.Entry
}

// NewLogPublisher создаёт паблишер поверх logrus.
func NewLogPublisher(logger *log.Entry) *LogPublisher {
	if logger == nil {
		logger = log.WithField("component", "outbox-log-publisher")
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(msg domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"outbox_id":  msg.ID,
		"order_id":   msg.OrderID,
		"event_type": msg.EventType,
	}).Debug(string(msg.Payload))
	return nil
}

var _ domain.OutboxPublisher = (*LogPublisher)(nil)
