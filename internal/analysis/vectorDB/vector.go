package vectorDB

import "context"

// AnswerCache stores prior model answers keyed by the embedding of the
// normalized resume text. A near-identical upload gets the cached analysis
// back without another model call.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
