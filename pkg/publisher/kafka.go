package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/joripage/limit-orderbook/pkg/orderbook"
	kafka "github.com/segmentio/kafka-go"
)

const fillEventHeader = "fill"

type KafkaConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Brokers        []string `yaml:"brokers"`
	Topic          string   `yaml:"topic"`
	BatchSize      int      `yaml:"batch_size"`
	BatchBytes     int64    `yaml:"batch_bytes"`
	BatchTimeoutMs int      `yaml:"batch_timeout_ms"`
	Async          bool     `yaml:"async"`
	RequireAll     bool     `yaml:"require_all"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaFillPublisher writes every fill as one JSON message keyed by the
// instrument, so one instrument's fills stay ordered within a partition.
type KafkaFillPublisher struct {
	w     messageWriter
	topic string
}

func NewKafkaFillPublisher(cfg KafkaConfig) *KafkaFillPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = 1 << 20
	}
	batchTimeout := time.Duration(cfg.BatchTimeoutMs) * time.Millisecond
	if batchTimeout == 0 {
		batchTimeout = 50 * time.Millisecond
	}
	acks := kafka.RequireOne
	if cfg.RequireAll {
		acks = kafka.RequireAll
	}

	wr := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           acks,
		Async:                  cfg.Async,
	}
	return &KafkaFillPublisher{w: wr, topic: cfg.Topic}
}

func (p *KafkaFillPublisher) PublishFills(ctx context.Context, fills []orderbook.Fill) error {
	if p == nil || p.w == nil {
		return errors.New("producer not initialized")
	}
	if len(fills) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(fills))
	now := time.Now()
	for _, f := range fills {
		value, err := json.Marshal(f)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Topic: p.topic,
			Key:   []byte(f.TickID),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event", Value: []byte(fillEventHeader)},
				{Key: "maker_id", Value: []byte(strconv.FormatUint(f.MakerID, 10))},
				{Key: "taker_id", Value: []byte(strconv.FormatUint(f.TakerID, 10))},
			},
			Time: now,
		})
	}
	return p.w.WriteMessages(ctx, msgs...)
}

func (p *KafkaFillPublisher) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}
