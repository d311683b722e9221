package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Twilio error codes with a dedicated message.
const (
	twilioInvalidNumber    = 21614
	twilioUnverifiedNumber = 21608
	twilioAuthentication   = 20003
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioGateway struct {
	api    messageCreator
	from   string
	logger *logrus.Logger
}

func NewTwilioGateway(accountSID, authToken, from string, logger *logrus.Logger) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	logger.WithField("from", from).Info("Twilio client initialized")

	return &TwilioGateway{
		api:    client.Api,
		from:   from,
		logger: logger,
	}
}

func (g *TwilioGateway) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &DeliveryError{Reason: "request cancelled", Err: err}
	}

	if !strings.HasPrefix(to, "+") {
		g.logger.WithField("to", to).Warn("Phone number doesn't start with '+', delivery may fail")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.from)
	params.SetBody(body)

	message, err := g.api.CreateMessage(params)
	if err != nil {
		deliveryErr := classifyTwilioError(to, err)
		g.logger.WithError(err).WithFields(logrus.Fields{
			"to":   to,
			"code": deliveryErr.Code,
		}).Error("Twilio failed to send message")
		return "", deliveryErr
	}

	sid := ""
	if message.Sid != nil {
		sid = *message.Sid
	}

	g.logger.WithFields(logrus.Fields{
		"to":  to,
		"sid": sid,
	}).Info("SMS sent")

	return sid, nil
}

func classifyTwilioError(to string, err error) *DeliveryError {
	var restErr *twilioclient.TwilioRestError
	if !errors.As(err, &restErr) {
		return &DeliveryError{Reason: fmt.Sprintf("failed to send SMS: %v", err), Err: err}
	}

	deliveryErr := &DeliveryError{Code: restErr.Code, Err: err}
	switch restErr.Code {
	case twilioInvalidNumber:
		deliveryErr.Reason = fmt.Sprintf("invalid phone number format: %s", to)
	case twilioUnverifiedNumber:
		deliveryErr.Reason = fmt.Sprintf("unverified phone number: %s. In trial mode, you can only send to verified numbers", to)
	case twilioAuthentication:
		deliveryErr.Reason = "authentication error, check your Twilio credentials"
	default:
		deliveryErr.Reason = fmt.Sprintf("twilio error: %s", restErr.Message)
	}
	return deliveryErr
}
