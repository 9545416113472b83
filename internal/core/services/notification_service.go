package services

import (
	"context"
	"log"
	"os"
	"time"

	"nalanda-lms/internal/adapters/persistence/models"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys for borrow lifecycle events
const (
	eventBorrowCreated  = "borrow.created"
	eventBorrowReturned = "borrow.returned"
	eventBorrowOverdue  = "borrow.overdue"
)

// NotificationService publishes borrow lifecycle events to a RabbitMQ
// topic exchange. Disabled (no-op) when AMQP_URL is not configured.
type NotificationService struct {
	ch       *amqp.Channel
	exchange string
	enabled  bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		log.Println("📪 Notifications disabled (AMQP_URL not set)")
		return &NotificationService{}
	}

	exchange := os.Getenv("AMQP_EXCHANGE")
	if exchange == "" {
		exchange = "library.events"
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("⚠️ Notifications disabled: failed to connect to AMQP: %v", err)
		return &NotificationService{}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("⚠️ Notifications disabled: failed to open AMQP channel: %v", err)
		return &NotificationService{}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		log.Printf("⚠️ Notifications disabled: failed to declare exchange: %v", err)
		return &NotificationService{}
	}

	log.Printf("📬 Notifications enabled [exchange: %s]", exchange)
	return &NotificationService{ch: ch, exchange: exchange, enabled: true}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s != nil && s.enabled
}

// publish marshals payload and sends it with the given routing key
func (s *NotificationService) publish(key string, payload interface{}) {
	if !s.IsEnabled() {
		return
	}

	body, err := jsoniter.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ Notification marshal error [%s]: %v", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.ch.PublishWithContext(ctx, s.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	if err != nil {
		log.Printf("⚠️ Notification publish error [%s]: %v", key, err)
	}
}

// NotifyBorrowCreated publishes a borrow.created event
func (s *NotificationService) NotifyBorrowCreated(record *models.BorrowRecord) {
	s.publish(eventBorrowCreated, map[string]interface{}{
		"borrow_id":   record.ID,
		"user_id":     record.UserID,
		"book_id":     record.BookID,
		"borrow_date": record.BorrowDate,
		"due_date":    record.DueDate,
	})
}

// NotifyBorrowReturned publishes a borrow.returned event
func (s *NotificationService) NotifyBorrowReturned(record *models.BorrowRecord) {
	s.publish(eventBorrowReturned, map[string]interface{}{
		"borrow_id":   record.ID,
		"user_id":     record.UserID,
		"book_id":     record.BookID,
		"return_date": record.ReturnDate,
	})
}

// NotifyOverdueMarked publishes a borrow.overdue event after a sweep
func (s *NotificationService) NotifyOverdueMarked(count int64) {
	s.publish(eventBorrowOverdue, map[string]interface{}{
		"marked_overdue": count,
		"swept_at":       time.Now(),
	})
}
