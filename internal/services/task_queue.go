package services

import (
	"context"
	"encoding/json"

	"github.com/abhinawagoo/guestloops-sub000/internal/config"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeAnalysis = "analysis:process"

	// Record kinds carried by an AnalysisTask
	RecordKindFeedback = "feedback"
	RecordKindReview   = "review"
)

// AnalysisTask represents one content analysis job for a stored record.
type AnalysisTask struct {
	RecordKind string `json:"record_kind"` // feedback, review
	RecordID   string `json:"record_id"`
	TenantID   string `json:"tenant_id"`
}

// TaskQueue defines the interface for analysis task processing
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *AnalysisTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// NewTaskQueue builds a queue from config: Redis-backed when enabled, the
// in-process sync queue otherwise. The sync queue still needs a processor
// set before it does anything.
func NewTaskQueue(cfg *config.Config) TaskQueue {
	if cfg.Redis.Enabled {
		queue, err := NewAsyncQueue(&cfg.Redis)
		if err != nil {
			logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
			return NewSyncQueue()
		}
		logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
		return queue
	}
	logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
	return NewSyncQueue()
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds an analysis task to the async queue. Retries give the
// analysis backfill its at-least-once guarantee.
func (q *AsyncQueue) Enqueue(task *AnalysisTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeAnalysis, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Task enqueued: id=%s, kind=%s, record=%s", info.ID, task.RecordKind, task.RecordID)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process processing (no Redis)
type SyncQueue struct {
	processor func(context.Context, *AnalysisTask) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function used to process tasks in-process
func (q *SyncQueue) SetProcessor(processor func(context.Context, *AnalysisTask) error) {
	q.processor = processor
}

// Enqueue processes the task in a goroutine so ingestion responses are not
// blocked on the analyzer.
func (q *SyncQueue) Enqueue(task *AnalysisTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] no processor set, task dropped: %s/%s", task.RecordKind, task.RecordID)
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Warnf("[SyncQueue] Task processing failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
