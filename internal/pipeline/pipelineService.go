package pipeline

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/resumeatlas/ResumeAPI/internal/analysis/embedding"
	"github.com/resumeatlas/ResumeAPI/internal/analysis/llm"
	"github.com/resumeatlas/ResumeAPI/internal/analysis/vectorDB"
	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/internal/extract"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

// Service is what the worker calls - it doesn't need to know the engines
// or the model client behind it.
type Service interface {
	ProcessResume(ctx context.Context, job jobModel.Job) jobModel.Job
	ProcessChat(ctx context.Context, job jobModel.Job, history []sessionModel.ConversationTurn) jobModel.Job
}

type service struct {
	extractor   extract.TextExtractor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	cache       vectorDB.AnswerCache
	logger      *logger_i.Logger
}

// NewService constructor. Embedder and cache may be nil: analysis then
// always goes to the model, nothing else changes.
func NewService(extractor extract.TextExtractor, llm llm.Provider, em embedding.Embedder, cache vectorDB.AnswerCache) Service {
	return &service{
		extractor:   extractor,
		llmProvider: llm,
		embedder:    em,
		cache:       cache,
		logger:      logger_i.NewLogger("Pipeline Service :"),
	}
}

// ProcessResume runs the full upload pipeline: extract, normalize, cache
// lookup, model analysis. The temp file is removed whatever happens.
func (s *service) ProcessResume(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.JobExecutionTimeout)
	defer cancel()

	defer s.removeUpload(jobt.JobPayload.FilePath, inMethodLogger)

	jobt.JobPayload.Question = config.AnalysisPrompt

	// Extraction
	rawText, err := s.executeExtractStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedMediaType) {
			return s.jobError(jobt, err, "UNSUPPORTED_MEDIA_TYPE", http.StatusUnsupportedMediaType, false)
		}
		return s.jobError(jobt, err, "EXTRACTION_FAILURE", http.StatusInternalServerError, true)
	}

	// Normalization
	cleaned := s.executeNormalizeStep(inMethodLogger, &jobt, rawText)
	jobt.JobPayload.ExtractedText = cleaned

	// Cache Check
	embeddingStep := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt, cleaned)
	if embeddingStep != nil {
		cachedAnswer, found := s.executeCacheCheckStep(processContext, inMethodLogger, &jobt, embeddingStep)
		if found {
			return returnOutput(jobt, cachedAnswer)
		}
	}

	// Model Analysis
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, cleaned, nil)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", http.StatusInternalServerError, true)
	}

	// Background Cache Save
	if embeddingStep != nil && s.cache != nil {
		go func() {
			if err := s.cache.SaveToCache(ctx, jobt.Id, embeddingStep, answer); err != nil {
				s.logger.Error("Failed to save analysis to cache")
			}
		}()
	}

	return returnOutput(jobt, answer)
}

// ProcessChat answers one follow-up question against the resume text
// already on the session.
func (s *service) ProcessChat(ctx context.Context, jobt jobModel.Job, history []sessionModel.ConversationTurn) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.JobExecutionTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.ChatInit

	if strings.TrimSpace(jobt.JobPayload.Question) == "" {
		return s.jobError(jobt, errors.New("empty message"), "EMPTY_MESSAGE", http.StatusBadRequest, false)
	}
	if jobt.JobPayload.ExtractedText == "" {
		return s.jobError(jobt, errors.New("no resume text on session"), "NO_RESUME_ON_SESSION", http.StatusBadRequest, false)
	}

	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, jobt.JobPayload.ExtractedText, history)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", http.StatusInternalServerError, true)
	}

	return returnOutput(jobt, answer)
}

func (s *service) removeUpload(path string, log *logger_i.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("could not remove uploaded file", "path", path, "error", err)
	}
}
