package handlers

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/api"
	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/internal/job"
	"github.com/resumeatlas/ResumeAPI/internal/metrics"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func GetSession(ctx context.Context, id string) (sessionModel.Session, bool) {
	if handlerInstance == nil || id == "" {
		return sessionModel.Session{}, false
	}
	return handlerInstance.service.SessionStore.GetSession(ctx, id)
}

// ValidateChatRequest rejects blank messages and sessions that have no
// analyzed resume to talk about.
func ValidateChatRequest(ctx context.Context, chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.Debug(" Validating chat request ", "sessionId :", chatReq.SessionID)
	if strings.TrimSpace(chatReq.Message) == "" {
		return false
	}
	if chatReq.SessionID == "" {
		return false
	}
	session, found := handlerInstance.service.SessionStore.GetSession(ctx, chatReq.SessionID)
	return found && session.ExtractedText != ""
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.SessionId = newJob.sessionId
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued

	if newJob.isAnalyze {
		_job.CurrentStep = jobModel.AnalyzeInit
		_job.JobType = jobModel.JobTypeAnalyze
		_job.JobPayload.FileName = newJob.fileName
		_job.JobPayload.FilePath = newJob.filePath
		_job.JobPayload.MediaType = newJob.mediaType

	} else {
		_job.JobType = jobModel.JobTypeChat
		_job.JobPayload.Question = newJob.message
		_job.CurrentStep = jobModel.ChatInit
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker is added every 10 requests, and always for an analysis job -
	//extraction plus a model call holds a worker for a while, chat answers are
	//quicker. idle workers retire on their own so the pool shrinks back.
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeAnalyze {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
