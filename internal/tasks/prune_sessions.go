package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SessionPruner collapses reading session history down to the rows the
// application still reads.
type SessionPruner interface {
	PruneHistory() (int64, error)
}

// PruneSessionsTask removes superseded reading-session rows. Only the latest
// session per user and book carries live state; older rows are bookkeeping.
type PruneSessionsTask struct{}

func (t PruneSessionsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_sessions",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneSessionsProcessor creates the processor for PruneSessionsTask.
func PruneSessionsProcessor(pruner SessionPruner) backlite.QueueProcessor[PruneSessionsTask] {
	return func(ctx context.Context, task PruneSessionsTask) error {
		if pruner == nil {
			return fmt.Errorf("session pruner not configured")
		}

		pruned, err := pruner.PruneHistory()
		if err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}

		log.Printf("[TASK] Pruned %d superseded reading sessions", pruned)
		return nil
	}
}

// NewPruneSessionsQueue creates a backlite queue for session pruning.
func NewPruneSessionsQueue(pruner SessionPruner) backlite.Queue {
	return backlite.NewQueue(PruneSessionsProcessor(pruner))
}
