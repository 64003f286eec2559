package models

import (
	"context"
	"sync"
	"time"

	"dynoquery/utils/logger"

	"github.com/robfig/cron"
)

// ExecutionStatus represents the state of a background job run
type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// WorkerConfig holds configuration for the history retention worker
type WorkerConfig struct {
	CronSchedule string `json:"cron_schedule"`
	MaxEntries   int    `json:"max_entries"`
	RunOnStart   bool   `json:"run_on_start"`
}

// ExecutionResult is the outcome of the last retention run
type ExecutionResult struct {
	Status       ExecutionStatus `json:"status"`
	StartTime    time.Time       `json:"start_time"`
	Duration     time.Duration   `json:"duration"`
	Removed      int64           `json:"removed"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// Worker manages the history retention cron job
type Worker struct {
	Config       *Config
	Logger       logger.Logger
	CronJob      *cron.Cron
	WorkerConfig *WorkerConfig
	IsRunning    bool
	LastResult   *ExecutionResult

	// Synchronization and state management
	Mu       sync.RWMutex
	Ctx      context.Context
	Cancel   context.CancelFunc
	StopOnce sync.Once
}
