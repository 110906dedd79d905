package worker

import "context"

// IngestServiceInterface defines the interface for catalog ingestion
// This avoids import cycles by not importing the services package
type IngestServiceInterface interface {
	IngestSuggestions(ctx context.Context, planID, userID int64, topic string, limit int) (int, error)
}

// IngestSuggestionsJob pulls catalog suggestions for a plan topic and
// attaches them as plan resources.
type IngestSuggestionsJob struct {
	IngestService IngestServiceInterface
	PlanID        int64
	UserID        int64
	Topic         string
	Limit         int
}

func (j *IngestSuggestionsJob) Name() string { return "ingest_suggestions" }

func (j *IngestSuggestionsJob) Run(ctx context.Context) error {
	_, err := j.IngestService.IngestSuggestions(ctx, j.PlanID, j.UserID, j.Topic, j.Limit)
	return err
}
