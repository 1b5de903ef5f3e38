package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// NotificationProducer publishes email notifications to the notification topic
type NotificationProducer interface {
	PublishNotification(ctx context.Context, notification *EmailNotification) error
	PublishBatchNotifications(ctx context.Context, notifications []*EmailNotification) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type ProducerConfig struct {
	Brokers           []string
	NotificationTopic string
	RequiredAcks      sarama.RequiredAcks
	MaxRetries        int
	RetryBackoff      time.Duration
	FlushFrequency    time.Duration
	Idempotent        bool
}

func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:           []string{"localhost:9092"},
		NotificationTopic: "notifications",
		RequiredAcks:      sarama.WaitForAll,
		MaxRetries:        5,
		RetryBackoff:      100 * time.Millisecond,
		FlushFrequency:    10 * time.Millisecond,
		Idempotent:        true,
	}
}

type KafkaNotificationProducer struct {
	producer sarama.SyncProducer
	client   sarama.Client
	config   *ProducerConfig
}

func NewKafkaNotificationProducer(config *ProducerConfig) (NotificationProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = config.FlushFrequency

	// Messages for one user stay on one partition so emails arrive in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	if config.Idempotent {
		saramaConfig.Producer.Idempotent = true
		saramaConfig.Net.MaxOpenRequests = 1
	}

	client, err := sarama.NewClient(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	return &KafkaNotificationProducer{
		producer: producer,
		client:   client,
		config:   config,
	}, nil
}

func (p *KafkaNotificationProducer) PublishNotification(ctx context.Context, notification *EmailNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification %s: %w", notification.ID, err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.NotificationTopic,
		Key:   sarama.StringEncoder(notification.UserID.String()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification-type"), Value: []byte(notification.Type)},
			{Key: []byte("notification-id"), Value: []byte(notification.ID.String())},
		},
		Timestamp: notification.CreatedAt,
	}

	if _, _, err := p.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to publish notification %s: %w", notification.ID, err)
	}

	return nil
}

func (p *KafkaNotificationProducer) PublishBatchNotifications(ctx context.Context, notifications []*EmailNotification) error {
	if len(notifications) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(notifications))
	for _, notification := range notifications {
		payload, err := json.Marshal(notification)
		if err != nil {
			return fmt.Errorf("failed to marshal notification %s: %w", notification.ID, err)
		}
		messages = append(messages, &sarama.ProducerMessage{
			Topic: p.config.NotificationTopic,
			Key:   sarama.StringEncoder(notification.UserID.String()),
			Value: sarama.ByteEncoder(payload),
			Headers: []sarama.RecordHeader{
				{Key: []byte("notification-type"), Value: []byte(notification.Type)},
				{Key: []byte("notification-id"), Value: []byte(notification.ID.String())},
			},
			Timestamp: notification.CreatedAt,
		})
	}

	if err := p.producer.SendMessages(messages); err != nil {
		return fmt.Errorf("failed to publish notification batch: %w", err)
	}

	return nil
}

func (p *KafkaNotificationProducer) HealthCheck(ctx context.Context) error {
	brokers := p.client.Brokers()
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers available")
	}

	if _, err := p.client.RefreshController(); err != nil {
		return fmt.Errorf("kafka controller unreachable: %w", err)
	}

	return nil
}

func (p *KafkaNotificationProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		p.client.Close()
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return p.client.Close()
}
