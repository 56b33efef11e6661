package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/config"
	jobmodel "github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	logger.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeAnalyze {
		job.CurrentStep = jobmodel.AnalyzeInit
		job = analyzeResume(ctx, job)
	} else {
		job.CurrentStep = jobmodel.ChatInit
		job = answerFollowUp(ctx, job)
	}

	job.EndTime = time.Now()
	saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

// analyzeResume runs the upload pipeline and folds the outcome into the
// session: on success the fresh text plus the opening exchange, on failure
// only the error. Either way the run guard is released.
func analyzeResume(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	defer _jobService.SessionStore.ReleaseRun(ctx, job.SessionId)

	job = _pipelineService.ProcessResume(ctx, job)

	session, found := _jobService.SessionStore.GetSession(ctx, job.SessionId)
	if !found {
		session = sessionModel.Session{Id: job.SessionId}
	}
	session.Processing = false

	if job.Status == jobmodel.JobStatusError {
		// a failed upload leaves no partial state behind
		session.FileName = ""
		session.ExtractedText = ""
		session.Transcript = nil
		session.LastError = job.Error.Message
	} else {
		session.FileName = job.JobPayload.FileName
		session.ExtractedText = job.JobPayload.ExtractedText
		session.Transcript = []sessionModel.ConversationTurn{
			{Role: sessionModel.RoleUser, Content: config.InitialPromptLabel},
			{Role: sessionModel.RoleAssistant, Content: job.JobPayload.Answer},
		}
		session.LastError = ""
	}

	if err := _jobService.SessionStore.SaveSession(ctx, session); err != nil {
		logger.Error("Failed to save session after analysis", "err", err)
	}
	return job
}

// answerFollowUp loads the session text and transcript, asks the model and
// appends the exchange. A failed call leaves the transcript untouched.
// The run guard taken at submission is released whatever the outcome.
func answerFollowUp(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	defer _jobService.SessionStore.ReleaseRun(ctx, job.SessionId)

	session, found := _jobService.SessionStore.GetSession(ctx, job.SessionId)
	if !found {
		job.Status = jobmodel.JobStatusError
		job.Error = jobmodel.JobError{
			Code:    http.StatusNotFound,
			Message: "SESSION_NOT_FOUND",
			Retry:   false,
		}
		return job
	}

	job.JobPayload.ExtractedText = session.ExtractedText
	job = _pipelineService.ProcessChat(ctx, job, session.Transcript)

	session.AIBusy = false
	if job.Status == jobmodel.JobStatusError {
		session.LastError = job.Error.Message
	} else {
		session.Transcript = append(session.Transcript,
			sessionModel.ConversationTurn{Role: sessionModel.RoleUser, Content: job.JobPayload.Question},
			sessionModel.ConversationTurn{Role: sessionModel.RoleAssistant, Content: job.JobPayload.Answer},
		)
		session.LastError = ""
	}

	if err := _jobService.SessionStore.SaveSession(ctx, session); err != nil {
		logger.Error("Failed to save session after chat", "err", err)
	}
	return job
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobStatus
	}
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "err", err)
	}
}
