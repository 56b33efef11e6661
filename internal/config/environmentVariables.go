package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	//upload boundary
	MaxUploadSizeBytes = 10 << 20 //10mb is plenty for a resume

	//worker pool sizing
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//covers OCR on a large scan plus one model call
	JobExecutionTimeout = 120 * time.Second

	//inference endpoint (Mixtral instruct via hosted inference)
	InferenceURL       = "https://api-inference.huggingface.co/models/mistralai/Mixtral-8x7B-Instruct-v0.1"
	InferenceTimeout   = 60 * time.Second
	GenMaxNewTokens    = 1024
	GenTemperature     = 0.4
	GenTopP            = 0.95
	InitialPromptLabel = "Please analyze my resume"
	AnalysisPrompt     = "Analyze if this is a resume and provide the following details, else say 'it is not a resume': 1. Key qualifications and skills 2. Notable experience highlights 3. Areas for improvement 4. Overall assessment"

	//alternative provider
	OpenAIModelName = "gpt-4o-mini"

	//per-page guard for the pdf engine
	PDFPageExtractTimeout = 10 * time.Second

	//semantic analysis cache
	CacheSimilarityCutoff               = 0.97
	EmbeddingOutputDimensionality int32 = 1536
	AnalysisCacheCollection             = "analysis-cache"
	GeminiEmbeddingModel                = "gemini-embedding-001"

	//http client pooling
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//vectorDB
	QdrantHost             = "127.0.0.1"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DBs we can use
	RedisJobStore     = 0
	RedisSessionStore = 1

	//sessions are navigation state, not records - let them age out
	RedisJobStoreTTL     = 24 * time.Hour
	RedisSessionStoreTTL = 24 * time.Hour
	RunGuardTTL          = 5 * time.Minute
)

// AllowedMediaTypes is the full set of declared media types the upload
// boundary accepts. Anything else is rejected before extraction starts.
var AllowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

// secrets come from the environment only, never from call sites
func InferenceAPIKey() string {
	return os.Getenv("HF_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

// LLMProviderName selects the analysis backend: "mixtral" (default) or "openai".
func LLMProviderName() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "mixtral"
	}
	return p
}
