// Package amqppub publishes booking events to RabbitMQ for external
// collaborators (notification delivery, payment follow-up). Publishing is
// best-effort: errors are returned for logging but must never abort the
// request that produced the event.
package amqppub

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"quickstay/internal/domain"
)

const bookingCreatedQueue = "booking.created"

type Publisher struct{ url string }

func New(url string) *Publisher { return &Publisher{url: url} }

// BookingCreated publishes the event as a persistent JSON message on a
// durable queue. A fresh connection per publish keeps the adapter free of
// reconnect state; booking volume is nowhere near where that matters.
func (p *Publisher) BookingCreated(ctx context.Context, ev domain.BookingCreatedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Warn().Err(err).Msg("amqp dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("amqp channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		bookingCreatedQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		log.Warn().Err(err).Msg("amqp queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",                  // default exchange
		bookingCreatedQueue, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
