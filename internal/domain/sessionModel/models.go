package sessionModel

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in the user/assistant exchange log.
// The transcript is append-only for the lifetime of one uploaded document.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the pipeline state for one uploaded document: the cleaned
// extracted text, the conversation so far and the in-flight flags. It is
// reset whenever a new file is accepted for the session.
type Session struct {
	Id            string             `json:"id"`
	FileName      string             `json:"file_name,omitempty"`
	ExtractedText string             `json:"extracted_text,omitempty"`
	Transcript    []ConversationTurn `json:"transcript,omitempty"`
	Processing    bool               `json:"processing"`
	AIBusy        bool               `json:"ai_busy"`
	LastError     string             `json:"last_error,omitempty"`
	UpdatedTime   time.Time          `json:"updated_time"`
}

// Portfolio is the published view of a session, keyed by a user-chosen
// username. It is ephemeral navigation state: no uniqueness check and no
// durable record, a missing entry is simply not found.
type Portfolio struct {
	Username      string             `json:"username"`
	SessionId     string             `json:"session_id"`
	FileName      string             `json:"file_name,omitempty"`
	ExtractedText string             `json:"extracted_text"`
	Transcript    []ConversationTurn `json:"transcript,omitempty"`
	PublishedTime time.Time          `json:"published_time"`
}

type SessionStore interface {
	InitSession(ctx context.Context, id string) error
	GetSession(ctx context.Context, id string) (Session, bool)
	SaveSession(ctx context.Context, session Session) error

	// AcquireRun marks the session as having a pipeline run in flight.
	// It returns false when a run is already active - at most one run per
	// session. ReleaseRun clears the mark.
	AcquireRun(ctx context.Context, id string) bool
	ReleaseRun(ctx context.Context, id string)

	SavePortfolio(ctx context.Context, portfolio Portfolio) error
	GetPortfolio(ctx context.Context, username string) (Portfolio, bool)
}
