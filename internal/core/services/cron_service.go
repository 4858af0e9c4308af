package services

import (
	"context"
	"log"
	"time"

	"relic-ledger/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled background jobs
type CronService struct {
	borrowRepo repositories.BorrowRepository
	cron       *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(borrowRepo repositories.BorrowRepository) *CronService {
	return &CronService{
		borrowRepo: borrowRepo,
		cron:       cron.New(),
	}
}

// Start schedules the overdue sweep (08:30 daily)
func (s *CronService) Start() {
	_, err := s.cron.AddFunc("30 8 * * *", s.sweepOverdueLoans)
	if err != nil {
		log.Printf("Failed to schedule overdue sweep: %v", err)
		return
	}
	s.cron.Start()
	log.Println("CronService started (overdue sweep at 08:30 daily)")
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("CronService stopped")
}

// sweepOverdueLoans logs open loans past their expected return date.
// Overdue stays a derived state; the sweep is operational visibility only.
func (s *CronService) sweepOverdueLoans() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.borrowRepo.CountOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("Overdue sweep query error: %v", err)
		return
	}

	if count > 0 {
		log.Printf("Overdue sweep: %d loan(s) past expected return date", count)
	}
}
