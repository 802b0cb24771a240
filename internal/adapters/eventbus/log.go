package eventbus

import (
	"context"

	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/notify"
)

// LogSink escribe los eventos en el log. Es el sink cuando no hay Kafka configurado.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log}
}

func (l *LogSink) Publish(ctx context.Context, e notify.Event) error {
	l.log.Info("domain event", map[string]any{
		"type":       e.Type,
		"subject_id": e.SubjectID,
		"actor_id":   e.ActorID,
		"at":         e.At,
		"data":       e.Data,
	})
	return nil
}
