package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-resto-ops/internal/events"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	queueSize    = 256
	batchTimeout = 10 * time.Millisecond
	writeTimeout = 5 * time.Second
)

var ErrClosed = errors.New("kafka publisher closed")

// Publisher writes events to Kafka, one topic per event type, keyed by
// aggregate id so events of one product/order stay ordered.
//
// Publish never waits on the broker: messages go to a bounded queue drained
// by a single writer goroutine. A full queue drops the event with a warning,
// delivery failures are logged.
type Publisher struct {
	writer *kafkaGo.Writer
	prefix string
	log    *zap.Logger

	queue     chan kafkaGo.Message
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewPublisher(brokers []string, topicPrefix string, log *zap.Logger) *Publisher {
	p := &Publisher{
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.Hash{},
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafkaGo.RequireOne,
			BatchTimeout:           batchTimeout,
			ReadTimeout:            writeTimeout,
			WriteTimeout:           writeTimeout,
		},
		prefix:  topicPrefix,
		log:     log,
		queue:   make(chan kafkaGo.Message, queueSize),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) Topic(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *Publisher) Publish(_ context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(events.Envelope{Type: topic, Key: key, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafkaGo.Message{Topic: p.Topic(topic), Key: []byte(key), Value: value}

	select {
	case <-p.closing:
		return ErrClosed
	default:
	}
	select {
	case p.queue <- msg:
	default:
		p.log.Warn("kafka queue full, dropping event", zap.String("topic", msg.Topic), zap.String("key", key))
	}
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	for {
		select {
		case msg := <-p.queue:
			p.write(msg)
		case <-p.closing:
			for {
				select {
				case msg := <-p.queue:
					p.write(msg)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) write(msg kafkaGo.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("kafka delivery failed",
			zap.String("topic", msg.Topic),
			zap.ByteString("key", msg.Key),
			zap.Error(err))
	}
}

// Close flushes queued messages and releases broker connections.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.closing) })
	<-p.done
	return p.writer.Close()
}
