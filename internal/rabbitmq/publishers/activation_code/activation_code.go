package activationcode

import (
	"context"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange string, key string, msg amqp091.Publishing) error
}

// RabbitMQ hands activation codes over to a mailer service through a queue.
type RabbitMQ struct {
	log        logging.Logger
	channel    channel
	exchange   string
	routingKey string
}

func NewRabbitMQ(log logging.Logger, channel channel, exchange string, routingKey string) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	return &RabbitMQ{log: log, channel: channel, exchange: exchange, routingKey: routingKey}
}

func (s *RabbitMQ) SendActivationCode(ctx context.Context, email c.Email, code user.ActivationCode) error {
	message := schema.ActivationCode{Email: string(email), Code: string(code)}
	body, err := message.Marshal()
	if err != nil {
		return err
	}

	err = s.channel.PublishWithContext(ctx, s.exchange, s.routingKey, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	})
	if err != nil {
		s.log.Error(
			ctx,
			"Could not publish activation code.",
			logging.Entry("email", email),
			logging.Entry("err", err),
		)
		return err
	}
	s.log.Info(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("exchange", s.exchange),
		logging.Entry("RK", s.routingKey),
		logging.Entry("email", email),
	)
	return nil
}
