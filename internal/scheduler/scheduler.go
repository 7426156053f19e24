// Package scheduler provides the opt-in watch mode: an in-process cron
// that triggers the daily collection. The default contract remains an
// external OS scheduler invoking the one-shot binary.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"FuelWatch/internal/runner"
)

// Scheduler runs the collection on a cron expression.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *runner.Runner
}

func NewScheduler(r *runner.Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: r,
	}
}

// Register adds the daily collection task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, func() {
		log.Println("[INFO] running scheduled collection")
		if err := s.Runner.Run(); err != nil {
			log.Printf("[ERROR] scheduled collection: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
