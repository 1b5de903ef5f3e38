package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"aviato/internal/shared/config"
	"aviato/internal/users"
	"aviato/pkg/logger"
)

// UserDirectory resolves the recipient behind a user ID. The auth repository
// satisfies this.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Service is the domain-facing side of the notification pipeline. Booking and
// refund services call it after their transactions commit; it resolves the
// recipient, enqueues an email on Kafka and returns immediately. Delivery
// failures are logged, never surfaced to the caller: a booking must not fail
// because an email did.
type Service struct {
	producer  NotificationProducer
	consumer  NotificationConsumer
	directory UserDirectory
	workers   int

	publishTimeout time.Duration

	mu      sync.Mutex
	running bool
}

func NewService(cfg *config.Config, directory UserDirectory) (*Service, error) {
	if cfg.Email.SMTPHost == "" || cfg.Email.SMTPUsername == "" {
		return nil, fmt.Errorf("SMTP configuration is required: missing SMTP_HOST or SMTP_USERNAME")
	}

	emailService, err := NewSMTPEmailService(&SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP email service: %w", err)
	}

	producerConfig := DefaultProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic

	producer, err := NewKafkaNotificationProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroupID

	consumer, err := NewKafkaNotificationConsumer(consumerConfig, emailService)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	return &Service{
		producer:       producer,
		consumer:       consumer,
		directory:      directory,
		workers:        cfg.Kafka.ConsumerWorkers,
		publishTimeout: 10 * time.Second,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("notification service is already running")
	}

	if err := s.consumer.StartConsumers(ctx, s.workers); err != nil {
		return fmt.Errorf("failed to start notification consumers: %w", err)
	}

	s.running = true
	return nil
}

func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if err := s.consumer.Stop(); err != nil {
		logger.GetDefault().Error("failed to stop notification consumers", "error", err)
	}
	if err := s.producer.Close(); err != nil {
		logger.GetDefault().Error("failed to close notification producer", "error", err)
	}

	s.running = false
	return nil
}

func (s *Service) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if !running {
		return fmt.Errorf("notification service is not running")
	}
	return s.producer.HealthCheck(ctx)
}

// TicketsIssued queues the booking confirmation email
func (s *Service) TicketsIssued(ctx context.Context, userID uuid.UUID, ticketCodes []string, totalAmount int64) {
	s.dispatch(userID, NotificationTicketIssued, "Your booking is confirmed", map[string]interface{}{
		"TicketCodes": ticketCodes,
		"TotalAmount": totalAmount,
	})
}

// RefundApproved queues the refund approval email
func (s *Service) RefundApproved(ctx context.Context, userID uuid.UUID, ticketCode string, amount int64) {
	s.dispatch(userID, NotificationRefundApproved, "Your refund has been approved", map[string]interface{}{
		"TicketCode":   ticketCode,
		"RefundAmount": amount,
	})
}

// RefundRejected queues the refund rejection email
func (s *Service) RefundRejected(ctx context.Context, userID uuid.UUID, ticketCode string, reason string) {
	s.dispatch(userID, NotificationRefundRejected, "Update on your refund request", map[string]interface{}{
		"TicketCode": ticketCode,
		"Reason":     reason,
	})
}

// RescheduleApproved queues the reschedule confirmation email
func (s *Service) RescheduleApproved(ctx context.Context, userID uuid.UUID, ticketCode string, newFlightID uuid.UUID) {
	s.dispatch(userID, NotificationRescheduleApproved, "Your reschedule is confirmed", map[string]interface{}{
		"TicketCode":  ticketCode,
		"NewFlightID": newFlightID.String(),
	})
}

// dispatch resolves the recipient and publishes in the background, detached
// from the request context so an aborted request does not drop the email.
func (s *Service) dispatch(userID uuid.UUID, notificationType NotificationType, subject string, data map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		defer cancel()

		user, err := s.directory.GetUserByID(ctx, userID)
		if err != nil {
			logger.GetDefault().Error("failed to resolve notification recipient",
				"user_id", userID.String(),
				"type", string(notificationType),
				"error", err,
			)
			return
		}

		builder := NewNotificationBuilder(notificationType).
			WithRecipient(user.ID, user.Email, user.Name).
			WithSubject(subject)
		for k, v := range data {
			builder.WithData(k, v)
		}

		if err := s.producer.PublishNotification(ctx, builder.Build()); err != nil {
			logger.GetDefault().Error("failed to publish notification",
				"user_id", userID.String(),
				"type", string(notificationType),
				"error", err,
			)
		}
	}()
}
