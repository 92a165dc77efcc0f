// Package notification consumes the order events published by the order service.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/notification/internal/otel"
	"github.com/Alturino/storefront/order/pkg/response"
)

var events = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_notification_events_total",
		Help: "Order events received by the notification listener.",
	},
	[]string{"type", "outcome"},
)

// Handler reacts to one order event; its error is logged and does not stop the listener.
type Handler func(c context.Context, event response.Event) error

type Listener struct {
	client  *redis.Client
	channel string
	handle  Handler
}

func NewListener(client *redis.Client, handle Handler) *Listener {
	return &Listener{client: client, channel: constants.CHANNEL_ORDER_EVENTS, handle: handle}
}

// Run blocks until c is cancelled or the subscription is closed.
func (l *Listener) Run(c context.Context) error {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Listener Run").
		Str(constants.KEY_CHANNEL, l.channel).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "subscribing").Logger()
	logger.Info().Msg("subscribing")
	pubsub := l.client.Subscribe(c, l.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(c); err != nil {
		if c.Err() != nil {
			return nil
		}
		err = fmt.Errorf("failed subscribing with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed")

	messages := pubsub.Channel()
	logger = logger.With().Str(constants.KEY_PROCESS, "listening").Logger()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped listening")
			return nil
		case message, ok := <-messages:
			if !ok {
				logger.Info().Msg("subscription closed")
				return nil
			}
			l.dispatch(logger.WithContext(c), message)
		}
	}
}

func (l *Listener) dispatch(c context.Context, message *redis.Message) {
	c, span := otel.Tracer.Start(c, "Listener dispatch")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Listener dispatch").
		Logger()

	event := response.Event{}
	if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
		err = fmt.Errorf("failed decoding order event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		events.WithLabelValues("unknown", "invalid").Inc()
		return
	}
	logger = logger.With().
		Str(constants.KEY_ORDER_EVENT, event.Type).
		Str(constants.KEY_ORDER_ID, event.Order.ID.String()).
		Logger()

	if err := l.handle(logger.WithContext(c), event); err != nil {
		err = fmt.Errorf("failed handling order event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		events.WithLabelValues(event.Type, "failed").Inc()
		return
	}
	events.WithLabelValues(event.Type, "handled").Inc()
}

var ErrEmptyOrder = errors.New("order event without order")

// LogEvent writes the order event to the logger carried by c.
func LogEvent(c context.Context, event response.Event) error {
	if event.Order.ID == uuid.Nil {
		return ErrEmptyOrder
	}
	zerolog.Ctx(c).
		Info().
		Str(constants.KEY_USER_ID, event.Order.UserID.String()).
		Str(constants.KEY_SHOP_ID, event.Order.ShopID.String()).
		Str(constants.KEY_EMAIL, event.Order.Email).
		Str("amount", event.Order.Amount.StringFixed(2)).
		Int(constants.KEY_ORDER_LINES, len(event.Order.Lines)).
		Msg("order event received")
	return nil
}
