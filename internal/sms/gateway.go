package sms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Gateway delivers a text message and returns the provider's delivery id.
type Gateway interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// DeliveryError is returned by gateways when the provider rejects or fails a message.
type DeliveryError struct {
	Code   int
	Reason string
	Err    error
}

func (e *DeliveryError) Error() string {
	return e.Reason
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// LogGateway writes messages to the log instead of sending them. Used in development.
type LogGateway struct {
	logger *logrus.Logger
}

func NewLogGateway(logger *logrus.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

func (g *LogGateway) Send(_ context.Context, to, body string) (string, error) {
	id := fmt.Sprintf("LOG%s", uuid.New().String())
	g.logger.WithFields(logrus.Fields{
		"to":          to,
		"body":        body,
		"delivery_id": id,
	}).Info("SMS logged (not sent)")
	return id, nil
}
