package llm

import (
	"context"
	"errors"

	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
)

// ErrRemoteService marks failures of the hosted model endpoint: transport
// errors, non-2xx statuses, undecodable bodies. Callers surface these to the
// user without touching session state.
var ErrRemoteService = errors.New("inference service failure")

// Provider generates an answer from an instruction prompt grounded in the
// resume text. History carries prior turns for providers that use them.
type Provider interface {
	Generate(ctx context.Context, prompt string, resumeText string, history []sessionModel.ConversationTurn) (string, error)
}
