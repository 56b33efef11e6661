package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	SessionId string            `json:"session_id" example:"session_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type AnalysisResponse struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	ExtractedText string `json:"extracted_text,omitempty"`
}

type Result struct {
	Status   string            `json:"status"`
	Analysis *AnalysisResponse `json:"analysis,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	SessionId string `json:"session_id"`
	StatusURL string `json:"status_url"`
}

type Message struct {
	Role    string `json:"role" example:"assistant"`
	Content string `json:"content"`
}

type SessionResponse struct {
	SessionId     string    `json:"session_id"`
	FileName      string    `json:"file_name,omitempty"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	Messages      []Message `json:"messages"`
	Processing    bool      `json:"processing"`
	AiBusy        bool      `json:"ai_busy"`
	Error         string    `json:"error,omitempty"`
}

type PortfolioResponse struct {
	Username      string    `json:"username"`
	FileName      string    `json:"file_name,omitempty"`
	ExtractedText string    `json:"extracted_text"`
	Messages      []Message `json:"messages"`
	PublishedAt   time.Time `json:"published_at"`
}

// requests---------------------

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

type PublishRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}
