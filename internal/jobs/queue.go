package jobs

// Queue provides an abstraction for enqueueing background jobs
type Queue interface {
	EnqueueIngest(planID, userID int64, topic string, limit int) bool
	PendingJobs() int
}
