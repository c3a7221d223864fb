package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"bankbot/internal/services"
)

// Scheduler runs the background maintenance jobs: periodic user-context
// flushes and a daily query-volume summary.
type Scheduler struct {
	scheduler gocron.Scheduler
	contexts  *services.UserContextService
	queryLog  *services.QueryLogService
}

// NewScheduler creates the job scheduler
func NewScheduler(contexts *services.UserContextService, queryLog *services.QueryLogService) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: scheduler,
		contexts:  contexts,
		queryLog:  queryLog,
	}, nil
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start(flushInterval time.Duration) error {
	log.Println("⏰ Starting background jobs...")

	if flushInterval > 0 {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(flushInterval),
			gocron.NewTask(s.flushContexts),
			gocron.WithName("context-flush"),
		)
		if err != nil {
			return fmt.Errorf("failed to register context flush job: %w", err)
		}
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob("0 0 * * *", false),
		gocron.NewTask(s.logQuerySummary),
		gocron.WithName("query-summary"),
	)
	if err != nil {
		return fmt.Errorf("failed to register query summary job: %w", err)
	}

	s.scheduler.Start()
	log.Println("✅ Background jobs started")
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs
func (s *Scheduler) Stop() error {
	log.Println("⏹️ Stopping background jobs...")
	return s.scheduler.Shutdown()
}

// flushContexts rewrites the user-context file from memory. Chat turns
// already save on write; this catches anything that failed mid-run.
func (s *Scheduler) flushContexts() {
	if err := s.contexts.Save(); err != nil {
		log.Printf("⚠️ Context flush failed: %v", err)
		return
	}
	log.Printf("💾 Flushed chat contexts for %d users", s.contexts.Count())
}

// logQuerySummary logs the per-intent query counts once a day
func (s *Scheduler) logQuerySummary() {
	byIntent, total, err := s.queryLog.CountByIntent()
	if err != nil {
		log.Printf("⚠️ Query summary failed: %v", err)
		return
	}
	log.Printf("📊 Query log summary: %d queries across %d intents", total, len(byIntent))
}
