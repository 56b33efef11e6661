package adapter

import (
	"fmt"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/api"
	"github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
)

func ToInitJobResponse(id string, sessionId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		SessionId: sessionId,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:   string(job.Status),
		Analysis: ToAnalysisResponse(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		SessionId: job.SessionId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToAnalysisResponse(payload jobModel.JobPayload) *api.AnalysisResponse {
	if payload.Answer == "" && payload.ExtractedText == "" {
		return nil
	}

	return &api.AnalysisResponse{
		Question:      payload.Question,
		Answer:        payload.Answer,
		ExtractedText: payload.ExtractedText,
	}
}

func ToSessionResponse(session sessionModel.Session) api.SessionResponse {
	return api.SessionResponse{
		SessionId:     session.Id,
		FileName:      session.FileName,
		ExtractedText: session.ExtractedText,
		Messages:      ToMessages(session.Transcript),
		Processing:    session.Processing,
		AiBusy:        session.AIBusy,
		Error:         session.LastError,
	}
}

func ToPortfolioResponse(portfolio sessionModel.Portfolio) api.PortfolioResponse {
	return api.PortfolioResponse{
		Username:      portfolio.Username,
		FileName:      portfolio.FileName,
		ExtractedText: portfolio.ExtractedText,
		Messages:      ToMessages(portfolio.Transcript),
		PublishedAt:   portfolio.PublishedTime,
	}
}

func ToMessages(transcript []sessionModel.ConversationTurn) []api.Message {
	messages := make([]api.Message, 0, len(transcript))
	for _, turn := range transcript {
		messages = append(messages, api.Message{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		SessionId: "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status:   string(api.JobStatusError),
			Analysis: ToAnalysisResponse(jobModel.JobPayload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
