package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	AnalyzeInit    InternalStatus = "Init"
	ExtractingText InternalStatus = "Extracting"
	Normalizing    InternalStatus = "Normalizing"
	CacheCall      InternalStatus = "CacheCall"
	EmbeddingCall  InternalStatus = "EmbeddingAPI"
	LLMCall        InternalStatus = "LLM"

	ChatInit InternalStatus = "ChatInit"
	Error    InternalStatus = "Error"
	Complete InternalStatus = "Complete"

	JobTypeAnalyze JobType = "Analyze"
	JobTypeChat    JobType = "Chat"
)

type Job struct {
	Id          string         `json:"id"`
	SessionId   string         `json:"session_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	// Analyze jobs carry the uploaded file until extraction consumes it.
	FileName  string `json:"file_name,omitempty"`
	FilePath  string `json:"file_path,omitempty"`
	MediaType string `json:"media_type,omitempty"`

	// Question is the prompt for the model: the fixed analysis prompt for
	// Analyze jobs, the verbatim user message for Chat jobs.
	Question      string `json:"question,omitempty"`
	Answer        string `json:"answer,omitempty"`
	ExtractedText string `json:"extracted_text,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
