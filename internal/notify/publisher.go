package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/model"
)

const publishTimeout = 5 * time.Second

// Publisher announces new contributions.
type Publisher interface {
	Publish(ctx context.Context, txs []model.Transaction) error
	Close() error
}

// Nop discards everything. It is used when no broker is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, []model.Transaction) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes one persistent JSON message per contribution to a durable
// direct exchange.
type AMQP struct {
	conn       *amqp.Connection
	ch         channel
	exchange   string
	routingKey string
	log        zerolog.Logger
	now        func() time.Time
}

// New returns a Nop publisher when cfg has no URL, otherwise connects.
func New(cfg config.AMQPConfig, log zerolog.Logger) (Publisher, error) {
	if cfg.URL == "" {
		return Nop{}, nil
	}
	return DialAMQP(cfg, log)
}

// DialAMQP connects and declares the exchange, queue and binding.
func DialAMQP(cfg config.AMQPConfig, log zerolog.Logger) (*AMQP, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("notify: dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}

	routingKey := cfg.RoutingKey
	if routingKey == "" {
		routingKey = cfg.Queue
	}

	if err := declare(ch, cfg.Exchange, cfg.Queue, routingKey); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("exchange", cfg.Exchange).Str("queue", cfg.Queue).Msg("amqp publisher ready")
	return &AMQP{
		conn:       conn,
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: routingKey,
		log:        log,
		now:        time.Now,
	}, nil
}

func declare(ch *amqp.Channel, exchange, queue, key string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("notify: declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("notify: declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
		return fmt.Errorf("notify: bind queue: %w", err)
	}
	return nil
}

// Publish sends one message per transaction. It keeps going after a failed
// message and returns every error joined.
func (a *AMQP) Publish(ctx context.Context, txs []model.Transaction) error {
	var errs []error
	for _, tx := range txs {
		if err := a.publishOne(ctx, tx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(txs) > 0 {
		a.log.Debug().Int("count", len(txs)-len(errs)).Str("exchange", a.exchange).Msg("published contributions")
	}
	return errors.Join(errs...)
}

func (a *AMQP) publishOne(ctx context.Context, tx model.Transaction) error {
	now := a.now()
	body, err := NewContributionMessage(tx, now).ToJSON()
	if err != nil {
		return fmt.Errorf("notify: marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = a.ch.PublishWithContext(
		ctx,
		a.exchange,   // exchange
		a.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    tx.Key(),
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("notify: publish %s: %w", tx.Key(), err)
	}
	return nil
}

// Close closes the channel and connection.
func (a *AMQP) Close() error {
	var errs []error
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
