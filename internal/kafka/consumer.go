// Package kafka consumes the platform event topics and turns matched
// events into notification dispatches.
package kafka

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Apple-Square/moment-notification/internal/kafka/registry"
	"github.com/Apple-Square/moment-notification/internal/notify"

	// Blank imports trigger init() in each handler file,
	// registering all event handlers into the registry.
	_ "github.com/Apple-Square/moment-notification/internal/kafka/handlers"
)

// Consumer wraps the franz-go Kafka client.
type Consumer struct {
	client  *kgo.Client
	service *notify.Service
}

// New creates a Consumer with the given brokers, group ID, and topics.
func New(brokers []string, groupID string, topics []string, svc *notify.Service) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, service: svc}, nil
}

// Start begins polling Kafka and processing records. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Msg("kafka consumer started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("kafka fetch error")
		})

		fetches.EachRecord(func(r *kgo.Record) {
			c.process(r)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error().Err(err).Msg("kafka commit error")
		}
	}

	c.client.Close()
	log.Info().Msg("kafka consumer stopped")
}

// process routes a Kafka record through the handler registry and hands
// the resulting request to the dispatch orchestrator.
func (c *Consumer) process(r *kgo.Record) {
	log.Debug().
		Str("topic", r.Topic).
		Str("key", string(r.Key)).
		Msg("processing kafka record")

	// notification-commands doesn't use eventType routing
	req := registry.DispatchDirect(r.Topic, r.Value)
	if req == nil {
		req = registry.Dispatch(r.Topic, r.Value)
	}

	if req == nil {
		log.Debug().Str("topic", r.Topic).Msg("no handler matched, skipping")
		return
	}

	if err := c.service.Dispatch(*req); err != nil {
		log.Error().Err(err).
			Str("topic", r.Topic).
			Str("type", string(req.Type)).
			Str("sender", req.SenderID).
			Msg("failed to dispatch notification from kafka event")
	}
}
