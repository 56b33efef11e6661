package pipeline_test

import (
	"context"

	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
)

// MockExtractor implements extract.TextExtractor
type MockExtractor struct {
	OnExtract func(ctx context.Context, path string, mediaType string) (string, error)
}

func (m *MockExtractor) Extract(ctx context.Context, path string, mediaType string) (string, error) {
	if m.OnExtract != nil {
		return m.OnExtract(ctx, path, mediaType)
	}
	return "default extracted text", nil
}

// MockCache implements vectorDB.AnswerCache
type MockCache struct {
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer string) error
}

func (m *MockCache) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockCache) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string, resumeText string, history []sessionModel.ConversationTurn) (string, error)
	CallCount  int
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, resumeText string, history []sessionModel.ConversationTurn) (string, error) {
	m.CallCount++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt, resumeText, history)
	}
	return "mocked llm response", nil
}
