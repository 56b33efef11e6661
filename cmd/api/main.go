// @title           Resume Analysis & Portfolio API
// @version         1.0
// @description     This API handles asynchronous resume analysis, chat follow-ups and portfolio publishing
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/resumeatlas/ResumeAPI/internal/analysis/embedding/googleEmbedding"
	"github.com/resumeatlas/ResumeAPI/internal/analysis/llm"
	"github.com/resumeatlas/ResumeAPI/internal/analysis/llm/mixtral"
	"github.com/resumeatlas/ResumeAPI/internal/analysis/llm/openaiLLM"
	"github.com/resumeatlas/ResumeAPI/internal/analysis/vectorDB"
	"github.com/resumeatlas/ResumeAPI/internal/analysis/vectorDB/qdrantDB"
	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/data/store"
	jobmodel "github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/extract"
	"github.com/resumeatlas/ResumeAPI/internal/handlers"
	"github.com/resumeatlas/ResumeAPI/internal/job"
	"github.com/resumeatlas/ResumeAPI/internal/pipeline"
	"github.com/resumeatlas/ResumeAPI/internal/server"
	"github.com/resumeatlas/ResumeAPI/internal/worker"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	redisJobStore := store.GetRedisJobStore(serviceContext)
	redisSessionStore := store.GetRedisSessionStore(serviceContext)
	if redisJobStore == nil || redisSessionStore == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.SessionStore = store.InitInMemorySessionStore()
	} else {
		serviceConfig.JobStore = redisJobStore
		serviceConfig.SessionStore = redisSessionStore
	}
	service := job.InitJobService(serviceConfig)

	llmProvider := pickLLMProvider(logger)
	extractor := extract.NewFileExtractor()

	//the answer cache is best effort: without qdrant or the embedder the
	//pipeline simply calls the model every time
	var answerCache vectorDB.AnswerCache
	qdrantClient := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GeminiEmbeddingModel, config.GeminiAPIKey())
	if qdrantClient != nil && embeddingService != nil {
		answerCache = qdrantClient
	} else {
		logger.Warn("Analysis cache disabled", "Qdrant", qdrantClient != nil, "EmbeddingService", embeddingService != nil)
		embeddingService = nil
	}

	pipelineService := pipeline.NewService(extractor, llmProvider, embeddingService, answerCache)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, pipelineService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func pickLLMProvider(logger *logger_i.Logger) llm.Provider {
	switch config.LLMProviderName() {
	case "openai":
		logger.Info("Using OpenAI analysis backend")
		return openaiLLM.NewClient()
	default:
		logger.Info("Using Mixtral analysis backend")
		return mixtral.NewClient()
	}
}
