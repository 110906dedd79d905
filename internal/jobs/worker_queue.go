package jobs

import (
	"github.com/lbraga/studytrack/internal/worker"
)

// WorkerQueue implements Queue using worker pools
type WorkerQueue struct {
	ingestPool    *worker.Pool
	ingestService worker.IngestServiceInterface
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(ingestPool *worker.Pool, ingestService worker.IngestServiceInterface) Queue {
	return &WorkerQueue{
		ingestPool:    ingestPool,
		ingestService: ingestService,
	}
}

// EnqueueIngest reports false when the queue is full; the caller
// decides how to surface the rejection.
func (q *WorkerQueue) EnqueueIngest(planID, userID int64, topic string, limit int) bool {
	return q.ingestPool.TrySubmit(&worker.IngestSuggestionsJob{
		IngestService: q.ingestService,
		PlanID:        planID,
		UserID:        userID,
		Topic:         topic,
		Limit:         limit,
	})
}

func (q *WorkerQueue) PendingJobs() int {
	return q.ingestPool.QueueSize()
}
