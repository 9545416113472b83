package services

import (
	"context"
	"log"
	"time"

	"nalanda-lms/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// OverdueService runs the scheduled sweep that flips past-due borrowed
// records to overdue. The overdue state is advisory; returns of overdue
// loans are still accepted by the workflow.
type OverdueService struct {
	borrowRepo repositories.BorrowRepository
	notify     *NotificationService
	spec       string
	cron       *cron.Cron
}

// NewOverdueService creates a new overdue service.
// spec is a cron expression, e.g. "0 2 * * *" for 02:00 daily.
func NewOverdueService(borrowRepo repositories.BorrowRepository, notify *NotificationService, spec string) *OverdueService {
	return &OverdueService{
		borrowRepo: borrowRepo,
		notify:     notify,
		spec:       spec,
	}
}

// Start schedules the sweep and runs it once at boot so a restarted
// server does not wait a full cycle to catch up.
func (s *OverdueService) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, s.Sweep); err != nil {
		return err
	}
	c.Start()
	s.cron = c

	log.Printf("🚀 Overdue sweep scheduled [%s]", s.spec)
	go s.Sweep()
	return nil
}

// Stop stops the scheduler
func (s *OverdueService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("🛑 Overdue sweep stopped")
}

// Sweep marks every past-due borrowed record overdue in one statement
func (s *OverdueService) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.borrowRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Overdue sweep error: %v", err)
		return
	}

	if count > 0 {
		log.Printf("⏰ Marked %d borrow records overdue", count)
		s.notify.NotifyOverdueMarked(count)
	}
}
