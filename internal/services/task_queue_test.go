package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTaskTypeAnalysis_Constant(t *testing.T) {
	if TaskTypeAnalysis != "analysis:process" {
		t.Errorf("TaskTypeAnalysis = %q, expected %q", TaskTypeAnalysis, "analysis:process")
	}
}

func TestAnalysisTask_RecordKinds(t *testing.T) {
	if RecordKindFeedback != "feedback" {
		t.Errorf("RecordKindFeedback = %q, expected %q", RecordKindFeedback, "feedback")
	}
	if RecordKindReview != "review" {
		t.Errorf("RecordKindReview = %q, expected %q", RecordKindReview, "review")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	q := NewSyncQueue()
	if q.IsAsync() {
		t.Error("SyncQueue.IsAsync() should be false")
	}
}

func TestSyncQueue_EnqueueRunsProcessor(t *testing.T) {
	q := NewSyncQueue()

	var mu sync.Mutex
	var got *AnalysisTask
	done := make(chan struct{})

	q.SetProcessor(func(ctx context.Context, task *AnalysisTask) error {
		mu.Lock()
		got = task
		mu.Unlock()
		close(done)
		return nil
	})

	task := &AnalysisTask{RecordKind: RecordKindFeedback, RecordID: "f1", TenantID: "t1"}
	if err := q.Enqueue(task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.RecordID != "f1" || got.RecordKind != RecordKindFeedback || got.TenantID != "t1" {
		t.Errorf("processor received %+v", got)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	q := NewSyncQueue()
	// Dropping the task is the documented behavior; it must not error
	if err := q.Enqueue(&AnalysisTask{RecordKind: RecordKindReview, RecordID: "r1"}); err != nil {
		t.Errorf("Enqueue() without processor should not error, got %v", err)
	}
}

func TestSyncQueue_Close(t *testing.T) {
	q := NewSyncQueue()
	if err := q.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
