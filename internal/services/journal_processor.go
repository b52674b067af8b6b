package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskpilot/backend/internal/infrastructure/journal"
	"github.com/taskpilot/backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the journal is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// JournalProcessor drains locally journaled activity entries into the
// activity table on a schedule. Draining is best-effort bookkeeping; it
// never feeds back into the mutation path.
type JournalProcessor struct {
	store    *journal.Store
	monitor  ConnectionHealth
	activity repository.ActivityRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
}

func NewJournalProcessor(
	store *journal.Store,
	monitor ConnectionHealth,
	activity repository.ActivityRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *JournalProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jp := &JournalProcessor{
		store:    store,
		monitor:  monitor,
		activity: activity,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = jp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := jp.Drain(ctx); err != nil {
			jp.logger.Error("journal drain failed", zap.Error(err))
		}
	})

	return jp
}

// Start launches the cron scheduler.
func (jp *JournalProcessor) Start() {
	if jp == nil || jp.cron == nil {
		return
	}
	jp.cron.Start()
	jp.logger.Info("journal processor started")
}

// Stop gracefully stops the scheduler.
func (jp *JournalProcessor) Stop(ctx context.Context) {
	if jp == nil || jp.cron == nil {
		return
	}
	stopCtx := jp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	jp.logger.Info("journal processor stopped")
}

// Drain moves journaled entries into the activity table synchronously.
func (jp *JournalProcessor) Drain(ctx context.Context) error {
	if jp == nil || jp.store == nil {
		return nil
	}
	if jp.monitor != nil && !jp.monitor.IsOnline() {
		jp.logger.Debug("skipping journal drain (offline)")
		return nil
	}

	entries, err := jp.store.Batch(jp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		record := repository.ActivityEntry{
			ID:        entry.ID,
			TaskID:    entry.TaskID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Payload:   entry.Payload,
			CreatedAt: entry.Timestamp,
		}
		if err := jp.activity.Insert(ctx, record); err != nil {
			jp.logger.Error("failed to drain journal entry",
				zap.String("entry_id", entry.ID),
				zap.String("action", entry.Action),
				zap.Error(err))

			entry.Retries++
			if entry.Retries >= jp.cfg.MaxRetries {
				jp.logger.Warn("dropping journal entry (max retries reached)", zap.String("entry_id", entry.ID))
				_ = jp.store.Remove(entry)
				continue
			}

			if err := jp.store.Remove(entry); err != nil {
				jp.logger.Warn("failed to remove journal entry", zap.Error(err))
			}
			if err := jp.store.Requeue(entry); err != nil {
				jp.logger.Error("failed to requeue journal entry", zap.Error(err))
			}
			continue
		}

		if err := jp.store.Remove(entry); err != nil {
			jp.logger.Warn("failed to purge drained journal entry", zap.Error(err))
		}
	}

	if jp.cfg.Retention > 0 {
		if err := jp.store.Cleanup(time.Now().Add(-jp.cfg.Retention)); err != nil {
			jp.logger.Warn("journal cleanup failed", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of journaled entries.
func (jp *JournalProcessor) Size() int {
	if jp == nil || jp.store == nil {
		return 0
	}
	size, err := jp.store.Size()
	if err != nil {
		return 0
	}
	return size
}
