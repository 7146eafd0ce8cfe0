// Package scheduler runs the periodic maintenance jobs: pruning reading
// session history, detecting completed reading goals, and sweeping orphaned
// blobs out of the object store. Jobs are enqueued through the task queue so
// the scheduler itself never does database work.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/kuttab/kuttab/internal/tasks"
)

// MaintenanceScheduler enqueues the maintenance tasks on a cron schedule.
type MaintenanceScheduler struct {
	client   *tasks.Client
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewMaintenanceScheduler creates a scheduler for the given cron expression
// (standard five-field format, e.g. "30 3 * * *").
func NewMaintenanceScheduler(client *tasks.Client, schedule string) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		client:   client,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the schedule. Stops automatically when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.client == nil {
		log.Printf("Maintenance scheduler: task queue not available, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.enqueueAll)
	if err != nil {
		return fmt.Errorf("invalid maintenance schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Maintenance scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the schedule and waits for a running enqueue to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	log.Printf("Maintenance scheduler: stopped")
}

// RunNow enqueues the maintenance tasks immediately.
func (s *MaintenanceScheduler) RunNow() {
	go s.enqueueAll()
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next maintenance run will occur.
func (s *MaintenanceScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *MaintenanceScheduler) enqueueAll() {
	jobs := []backlite.Task{
		tasks.PruneSessionsTask{},
		tasks.CompleteGoalsTask{},
		tasks.CleanupBlobsTask{},
	}
	for _, job := range jobs {
		if _, err := s.client.Add(job).Save(); err != nil {
			log.Printf("Maintenance scheduler: failed to enqueue %T: %v", job, err)
		}
	}
}
