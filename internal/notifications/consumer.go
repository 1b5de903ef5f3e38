package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

type NotificationConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
	MaxProcessingTime time.Duration
	OffsetOldest      bool
	RetryBackoff      time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           "aviato-notification-workers",
		Topics:            []string{"notifications"},
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		MaxProcessingTime: 5 * time.Minute,
		OffsetOldest:      false,
		RetryBackoff:      time.Second,
	}
}

type KafkaNotificationConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	topics        []string
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

func NewKafkaNotificationConsumer(config *ConsumerConfig, emailService EmailService) (NotificationConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.HeartbeatInterval
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaNotificationConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		topics:        config.Topics,
	}, nil
}

func (knc *KafkaNotificationConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	knc.mu.Lock()
	defer knc.mu.Unlock()

	if knc.running {
		return fmt.Errorf("notification consumers already running")
	}

	if numWorkers < 1 {
		numWorkers = 1
	}

	workerCtx, cancel := context.WithCancel(ctx)
	knc.cancel = cancel

	log.Printf("📥 Starting %d notification consumer workers for topics: %v", numWorkers, knc.topics)

	go knc.handleErrors()

	for i := 0; i < numWorkers; i++ {
		knc.wg.Add(1)
		go func(workerID int) {
			defer knc.wg.Done()
			knc.runWorker(workerCtx, workerID)
		}(i)
	}

	knc.running = true
	return nil
}

func (knc *KafkaNotificationConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		workerID:     workerID,
		emailService: knc.emailService,
		retryBackoff: knc.config.RetryBackoff,
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("📥 Worker %d shutting down", workerID)
			return
		default:
			if err := knc.consumerGroup.Consume(ctx, knc.topics, handler); err != nil {
				log.Printf("📥 Worker %d error consuming messages: %v", workerID, err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (knc *KafkaNotificationConsumer) handleErrors() {
	for err := range knc.consumerGroup.Errors() {
		log.Printf("📥 Consumer group error: %v", err)
	}
}

func (knc *KafkaNotificationConsumer) Stop() error {
	knc.mu.Lock()
	defer knc.mu.Unlock()

	if !knc.running {
		return nil
	}

	knc.cancel()
	knc.wg.Wait()
	knc.running = false

	return knc.consumerGroup.Close()
}

func (knc *KafkaNotificationConsumer) HealthCheck(ctx context.Context) error {
	knc.mu.Lock()
	defer knc.mu.Unlock()

	if !knc.running {
		return fmt.Errorf("notification consumers are not running")
	}
	return nil
}

// consumerGroupHandler processes one claim's worth of notification messages
type consumerGroupHandler struct {
	workerID     int
	emailService EmailService
	retryBackoff time.Duration
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.processMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var notification EmailNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		// Poison message, mark and move on
		log.Printf("📥 Worker %d dropping malformed notification at %s/%d/%d: %v",
			h.workerID, message.Topic, message.Partition, message.Offset, err)
		return
	}

	for {
		err := h.emailService.SendNotification(ctx, &notification)
		if err == nil {
			return
		}

		if !notification.ShouldRetry() {
			log.Printf("📥 Worker %d giving up on notification %s (%s) after %d attempts: %v",
				h.workerID, notification.ID, notification.Type, notification.RetryCount+1, err)
			return
		}

		notification.IncrementRetry()
		log.Printf("📥 Worker %d retrying notification %s (attempt %d/%d): %v",
			h.workerID, notification.ID, notification.RetryCount, notification.MaxRetries, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(h.retryBackoff):
		}
	}
}
