package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"airline_ops/internal/cache"
	"airline_ops/internal/metrics"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Consumer слушает собственный топик событий рейсов и инвалидирует кеши:
// проекцию рейса и все закешированные результаты поиска.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler sarama.ConsumerGroupHandler
	logger  *log.Logger
}

func NewConsumer(
	brokers []string,
	groupID string,
	topic string,
	c cache.Cache,
	logger *log.Logger,
) (*Consumer, error) {
	if logger == nil {
		logger = log.Default()
	}

	cfg := sarama.NewConfig()

	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	// Коммит только руками после обработки
	cfg.Consumer.Offsets.AutoCommit.Enable = false

	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		sarama.NewBalanceStrategyRange(),
	}
	cfg.Consumer.Group.Session.Timeout = 30 * time.Second
	cfg.Consumer.Group.Heartbeat.Interval = 3 * time.Second

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	h := &eventGroupHandler{
		cache:  c,
		logger: logger,
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Printf("consumer group error: %v", err)
			metrics.IncKafkaError("consumer", "group")
		}
	}()

	for {
		err := c.group.Consume(ctx, []string{c.topic}, c.handler)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Printf("consume loop error: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type eventGroupHandler struct {
	cache  cache.Cache
	logger *log.Logger
}

func (h *eventGroupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *eventGroupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *eventGroupHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	for kafkaMsg := range claim.Messages() {
		lag := claim.HighWaterMarkOffset() - kafkaMsg.Offset - 1
		metrics.SetKafkaConsumerLag(kafkaMsg.Topic, kafkaMsg.Partition, lag)

		// Инвалидация кеша не критична: ошибку логируем, партицию не держим.
		if err := h.invalidate(session.Context(), kafkaMsg.Value); err != nil {
			h.logger.Printf(
				"invalidate cache failed topic=%s partition=%d offset=%d err=%v",
				kafkaMsg.Topic, kafkaMsg.Partition, kafkaMsg.Offset, err,
			)
			metrics.IncKafkaError("consumer", "process")
		} else {
			metrics.IncKafkaProcessed()
		}

		session.MarkMessage(kafkaMsg, "")
		session.Commit()
	}
	return nil
}

func (h *eventGroupHandler) invalidate(ctx context.Context, payload []byte) error {
	if h.cache == nil {
		return nil
	}

	var env EventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	flightID, err := uuid.Parse(env.FlightID)
	if err != nil {
		return fmt.Errorf("parse flight id %q: %w", env.FlightID, err)
	}

	// 1) проекция рейса
	_ = h.cache.Del(ctx, cache.FlightKey(flightID))

	// 2) все результаты поиска (через set ключей, без SCAN)
	setKey := cache.SearchKeysSetKey()
	keys, err := h.cache.SMembers(ctx, setKey)
	if err == nil && len(keys) > 0 {
		_ = h.cache.Del(ctx, keys...)
	}
	_ = h.cache.Del(ctx, setKey)

	return nil
}
