package notifications

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the booking event an email is about
type NotificationType string

const (
	NotificationTicketIssued       NotificationType = "TICKET_ISSUED"
	NotificationRefundApproved     NotificationType = "REFUND_APPROVED"
	NotificationRefundRejected     NotificationType = "REFUND_REJECTED"
	NotificationRescheduleApproved NotificationType = "RESCHEDULE_APPROVED"
)

type NotificationPriority string

const (
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityNormal NotificationPriority = "NORMAL"
)

// EmailNotification is the message that travels through the notification
// topic. It carries everything the consumer needs to render and send the
// email without further lookups.
type EmailNotification struct {
	ID             uuid.UUID              `json:"id"`
	Type           NotificationType       `json:"type"`
	Priority       NotificationPriority   `json:"priority"`
	UserID         uuid.UUID              `json:"user_id"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name"`
	Subject        string                 `json:"subject"`
	TemplateData   map[string]interface{} `json:"template_data"`
	CreatedAt      time.Time              `json:"created_at"`
	RetryCount     int                    `json:"retry_count"`
	MaxRetries     int                    `json:"max_retries"`
}

func (n *EmailNotification) ShouldRetry() bool {
	return n.RetryCount < n.MaxRetries
}

func (n *EmailNotification) IncrementRetry() {
	n.RetryCount++
}

// NotificationBuilder assembles an EmailNotification step by step
type NotificationBuilder struct {
	notification *EmailNotification
}

func NewNotificationBuilder(notificationType NotificationType) *NotificationBuilder {
	return &NotificationBuilder{
		notification: &EmailNotification{
			ID:           uuid.New(),
			Type:         notificationType,
			Priority:     PriorityNormal,
			TemplateData: make(map[string]interface{}),
			CreatedAt:    time.Now(),
			MaxRetries:   3,
		},
	}
}

func (b *NotificationBuilder) WithRecipient(userID uuid.UUID, email, name string) *NotificationBuilder {
	b.notification.UserID = userID
	b.notification.RecipientEmail = email
	b.notification.RecipientName = name
	return b
}

func (b *NotificationBuilder) WithSubject(subject string) *NotificationBuilder {
	b.notification.Subject = subject
	return b
}

func (b *NotificationBuilder) WithPriority(priority NotificationPriority) *NotificationBuilder {
	b.notification.Priority = priority
	return b
}

func (b *NotificationBuilder) WithData(key string, value interface{}) *NotificationBuilder {
	b.notification.TemplateData[key] = value
	return b
}

func (b *NotificationBuilder) Build() *EmailNotification {
	return b.notification
}
