package pipeline

import (
	"context"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/internal/extract"
	"github.com/resumeatlas/ResumeAPI/internal/metrics"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("Process", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, code int, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    code,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeExtractStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) (string, error) {
	*job = logOutput(*job, jobModel.ExtractingText, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extract", time.Since(start)) }()

	return s.extractor.Extract(ctx, job.JobPayload.FilePath, job.JobPayload.MediaType)
}

func (s *service) executeNormalizeStep(log *logger_i.Logger, job *jobModel.Job, raw string) string {
	*job = logOutput(*job, jobModel.Normalizing, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("normalize", time.Since(start)) }()

	return extract.Normalize(raw)
}

// executeEmbeddingStep returns nil when the embedder is absent or fails -
// the pipeline then skips the cache and goes straight to the model.
func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, text string) []float32 {
	if s.embedder == nil || s.cache == nil {
		return nil
	}
	*job = logOutput(*job, jobModel.EmbeddingCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vector, err := s.embedder.GetEmbedding(ctx, text)
	if err != nil {
		log.Warn("embedding failed, skipping analysis cache", "error", err)
		return nil
	}
	return vector
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.cache.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, resumeText string, history []sessionModel.ConversationTurn) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, job.JobPayload.Question, resumeText, history)
}
