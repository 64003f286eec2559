package worker

import (
	"context"
	"fmt"
	"time"

	"dynoquery/models"
	"dynoquery/utils"
	"dynoquery/utils/logger"

	"github.com/robfig/cron"
)

// HistoryPruner trims query history down to a number of entries
type HistoryPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// Worker runs history retention on a cron schedule
type Worker struct {
	Worker *models.Worker // Use pointer to avoid copying mutex
	pruner HistoryPruner
}

func NewWorker(cfg *models.Config, pruner HistoryPruner, log logger.Logger) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if pruner == nil {
		return nil, fmt.Errorf("history pruner cannot be nil")
	}

	workerConfig := &models.WorkerConfig{
		CronSchedule: cfg.HistoryRetentionSchedule,
		MaxEntries:   cfg.HistoryMaxEntries,
		RunOnStart:   true,
	}

	log.Debugf("Worker configuration: %s", utils.PrintPrettyJSON(workerConfig))

	if err := validateWorkerConfig(workerConfig); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		Worker: &models.Worker{
			Config:       cfg,
			Logger:       log,
			CronJob:      cron.New(),
			WorkerConfig: workerConfig,
			LastResult:   &models.ExecutionResult{Status: models.StatusPending},
			Ctx:          ctx,
			Cancel:       cancel,
		},
		pruner: pruner,
	}, nil
}

// validateWorkerConfig validates the worker configuration
func validateWorkerConfig(config *models.WorkerConfig) error {
	if config.CronSchedule == "" {
		return fmt.Errorf("cron schedule cannot be empty")
	}
	if _, err := cron.Parse(config.CronSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.CronSchedule, err)
	}
	if config.MaxEntries < 0 {
		return fmt.Errorf("max entries cannot be negative")
	}
	return nil
}

// Start schedules the retention job
func (w *Worker) Start() error {
	w.Worker.Mu.Lock()
	defer w.Worker.Mu.Unlock()

	if w.Worker.IsRunning {
		return fmt.Errorf("worker is already running")
	}

	select {
	case <-w.Worker.Ctx.Done():
		return fmt.Errorf("worker context is cancelled, cannot start")
	default:
	}

	if err := w.Worker.CronJob.AddFunc(w.Worker.WorkerConfig.CronSchedule, w.executeRetentionJob); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	w.Worker.CronJob.Start()
	w.Worker.IsRunning = true

	w.Worker.Logger.Infof("History retention worker started with schedule: %s", w.Worker.WorkerConfig.CronSchedule)

	if w.Worker.WorkerConfig.RunOnStart {
		go w.executeRetentionJob()
	}
	return nil
}

// executeRetentionJob is the cron job function
func (w *Worker) executeRetentionJob() {
	ctx, cancel := context.WithTimeout(w.Worker.Ctx, time.Minute)
	defer cancel()

	if _, err := w.RunNow(ctx); err != nil {
		w.Worker.Logger.Errorf("History retention failed: %v", err)
	}
}

// RunNow prunes history immediately. A max entries of zero keeps everything.
func (w *Worker) RunNow(ctx context.Context) (*models.ExecutionResult, error) {
	result := &models.ExecutionResult{Status: models.StatusRunning, StartTime: time.Now()}
	w.setResult(result)

	keep := w.Worker.WorkerConfig.MaxEntries
	var (
		removed int64
		err     error
	)
	if keep > 0 {
		removed, err = w.pruner.Prune(ctx, keep)
	}

	final := *result
	final.Removed = removed
	final.Duration = time.Since(result.StartTime)
	if err != nil {
		final.Status = models.StatusFailed
		final.ErrorMessage = err.Error()
		w.setResult(&final)
		return &final, err
	}

	final.Status = models.StatusCompleted
	w.setResult(&final)
	if final.Removed > 0 {
		w.Worker.Logger.Infof("History retention removed %d entries", final.Removed)
	}
	return &final, nil
}

func (w *Worker) setResult(result *models.ExecutionResult) {
	w.Worker.Mu.Lock()
	defer w.Worker.Mu.Unlock()
	w.Worker.LastResult = result
}

// GetStatus returns the outcome of the last run
func (w *Worker) GetStatus() *models.ExecutionResult {
	w.Worker.Mu.RLock()
	defer w.Worker.Mu.RUnlock()
	status := *w.Worker.LastResult
	return &status
}

// IsRunning reports whether the schedule is active
func (w *Worker) IsRunning() bool {
	w.Worker.Mu.RLock()
	defer w.Worker.Mu.RUnlock()
	return w.Worker.IsRunning
}

// Stop stops the retention worker
func (w *Worker) Stop() error {
	w.Worker.StopOnce.Do(func() {
		w.Worker.Logger.Info("Stopping history retention worker")
		w.Worker.Cancel()

		w.Worker.Mu.Lock()
		defer w.Worker.Mu.Unlock()
		if w.Worker.CronJob != nil {
			w.Worker.CronJob.Stop()
		}
		w.Worker.IsRunning = false
	})
	return nil
}
