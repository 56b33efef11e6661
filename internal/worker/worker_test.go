package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/internal/job"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

// MockPipelineService to track if jobs are executed
type MockPipelineService struct {
	ProcessedCount int32
	OnProcess      func(j jobModel.Job) jobModel.Job
}

func (m *MockPipelineService) ProcessResume(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcess != nil {
		return m.OnProcess(j)
	}
	return j
}

func (m *MockPipelineService) ProcessChat(ctx context.Context, j jobModel.Job, hist []sessionModel.ConversationTurn) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcess != nil {
		return m.OnProcess(j)
	}
	return j
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

// MockSessionStore keeps sessions in a map guarded by a mutex so worker
// goroutines can hit it concurrently. The run guard behaves like the real
// store: first acquire wins, release frees.
type MockSessionStore struct {
	mu         sync.Mutex
	sessions   map[string]sessionModel.Session
	activeRuns map[string]bool
	released   int32
}

func newMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions:   make(map[string]sessionModel.Session),
		activeRuns: make(map[string]bool),
	}
}

func (m *MockSessionStore) InitSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = sessionModel.Session{Id: id}
	return nil
}

func (m *MockSessionStore) GetSession(ctx context.Context, id string) (sessionModel.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *MockSessionStore) SaveSession(ctx context.Context, s sessionModel.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Id] = s
	return nil
}

func (m *MockSessionStore) AcquireRun(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeRuns[id] {
		return false
	}
	m.activeRuns[id] = true
	return true
}

func (m *MockSessionStore) ReleaseRun(ctx context.Context, id string) {
	m.mu.Lock()
	delete(m.activeRuns, id)
	m.mu.Unlock()
	atomic.AddInt32(&m.released, 1)
}

func (m *MockSessionStore) SavePortfolio(ctx context.Context, p sessionModel.Portfolio) error {
	return nil
}

func (m *MockSessionStore) GetPortfolio(ctx context.Context, username string) (sessionModel.Portfolio, bool) {
	return sessionModel.Portfolio{}, false
}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
		SessionStore:      newMockSessionStore(),
	}
	mockPipeline := &MockPipelineService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockPipeline)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeAnalyze, SessionId: "s-1"}
		jobSvc.JobChannel <- testJob

		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockPipeline.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_AnalyzeFoldsIntoSession(t *testing.T) {
	sessions := newMockSessionStore()
	_ = sessions.InitSession(context.Background(), "s-analyze")

	jobSvc := &job.Service{
		JobStore:     &MockJobStore{},
		SessionStore: sessions,
	}
	mockPipeline := &MockPipelineService{
		OnProcess: func(j jobModel.Job) jobModel.Job {
			j.JobPayload.ExtractedText = "Alice Smith\nEngineer"
			j.JobPayload.Answer = "Strong resume."
			j.CurrentStep = jobModel.Complete
			return j
		},
	}
	logger = logger_i.NewLogger("TestWorker")
	InitServices(jobSvc, mockPipeline)

	executeJob(jobModel.Job{
		Id:        "job-analyze",
		SessionId: "s-analyze",
		JobType:   jobModel.JobTypeAnalyze,
		JobPayload: jobModel.JobPayload{
			FileName: "resume.pdf",
		},
	})

	session, found := sessions.GetSession(context.Background(), "s-analyze")
	if !found {
		t.Fatal("session disappeared")
	}
	if session.ExtractedText != "Alice Smith\nEngineer" {
		t.Errorf("ExtractedText got %q", session.ExtractedText)
	}
	if len(session.Transcript) != 2 {
		t.Fatalf("Transcript should open with two turns, got %d", len(session.Transcript))
	}
	if session.Transcript[0].Content != config.InitialPromptLabel {
		t.Errorf("first turn got %q", session.Transcript[0].Content)
	}
	if session.Transcript[1].Content != "Strong resume." {
		t.Errorf("second turn got %q", session.Transcript[1].Content)
	}
	if atomic.LoadInt32(&sessions.released) != 1 {
		t.Error("run guard was not released")
	}
}

func TestExecuteJob_AnalyzeFailureClearsSession(t *testing.T) {
	sessions := newMockSessionStore()
	_ = sessions.InitSession(context.Background(), "s-fail")
	_ = sessions.SaveSession(context.Background(), sessionModel.Session{
		Id:            "s-fail",
		ExtractedText: "stale text from a previous resume",
		Transcript: []sessionModel.ConversationTurn{
			{Role: sessionModel.RoleUser, Content: "old turn"},
		},
	})

	jobSvc := &job.Service{
		JobStore:     &MockJobStore{},
		SessionStore: sessions,
	}
	mockPipeline := &MockPipelineService{
		OnProcess: func(j jobModel.Job) jobModel.Job {
			j.Status = jobModel.JobStatusError
			j.Error = jobModel.JobError{Code: 500, Message: "EXTRACTION_FAILURE"}
			return j
		},
	}
	logger = logger_i.NewLogger("TestWorker")
	InitServices(jobSvc, mockPipeline)

	executeJob(jobModel.Job{
		Id:        "job-fail",
		SessionId: "s-fail",
		JobType:   jobModel.JobTypeAnalyze,
	})

	session, _ := sessions.GetSession(context.Background(), "s-fail")
	if session.ExtractedText != "" {
		t.Errorf("failed run should clear extracted text, got %q", session.ExtractedText)
	}
	if len(session.Transcript) != 0 {
		t.Errorf("failed run should clear transcript, got %d turns", len(session.Transcript))
	}
	if session.LastError != "EXTRACTION_FAILURE" {
		t.Errorf("LastError got %q", session.LastError)
	}
	if atomic.LoadInt32(&sessions.released) != 1 {
		t.Error("run guard was not released on failure")
	}
}

func TestExecuteJob_ChatAppendsTurns(t *testing.T) {
	sessions := newMockSessionStore()
	_ = sessions.SaveSession(context.Background(), sessionModel.Session{
		Id:            "s-chat",
		ExtractedText: "Alice Smith\nEngineer",
		Transcript: []sessionModel.ConversationTurn{
			{Role: sessionModel.RoleUser, Content: config.InitialPromptLabel},
			{Role: sessionModel.RoleAssistant, Content: "Strong resume."},
		},
		AIBusy: true,
	})

	jobSvc := &job.Service{
		JobStore:     &MockJobStore{},
		SessionStore: sessions,
	}
	mockPipeline := &MockPipelineService{
		OnProcess: func(j jobModel.Job) jobModel.Job {
			j.JobPayload.Answer = "Add more metrics."
			j.CurrentStep = jobModel.Complete
			return j
		},
	}
	logger = logger_i.NewLogger("TestWorker")
	InitServices(jobSvc, mockPipeline)

	executeJob(jobModel.Job{
		Id:        "job-chat",
		SessionId: "s-chat",
		JobType:   jobModel.JobTypeChat,
		JobPayload: jobModel.JobPayload{
			Question: "What should I improve?",
		},
	})

	session, _ := sessions.GetSession(context.Background(), "s-chat")
	if len(session.Transcript) != 4 {
		t.Fatalf("Transcript should have 4 turns, got %d", len(session.Transcript))
	}
	if session.Transcript[2].Content != "What should I improve?" {
		t.Errorf("user turn got %q", session.Transcript[2].Content)
	}
	if session.Transcript[3].Content != "Add more metrics." {
		t.Errorf("assistant turn got %q", session.Transcript[3].Content)
	}
	if session.AIBusy {
		t.Error("AIBusy should clear after the answer lands")
	}
}

func TestExecuteJob_ChatFailureKeepsTranscript(t *testing.T) {
	sessions := newMockSessionStore()
	_ = sessions.SaveSession(context.Background(), sessionModel.Session{
		Id:            "s-chat-fail",
		ExtractedText: "Alice Smith",
		Transcript: []sessionModel.ConversationTurn{
			{Role: sessionModel.RoleUser, Content: config.InitialPromptLabel},
			{Role: sessionModel.RoleAssistant, Content: "Fine."},
		},
	})

	jobSvc := &job.Service{
		JobStore:     &MockJobStore{},
		SessionStore: sessions,
	}
	mockPipeline := &MockPipelineService{
		OnProcess: func(j jobModel.Job) jobModel.Job {
			j.Status = jobModel.JobStatusError
			j.Error = jobModel.JobError{Code: 500, Message: "LLM_GENERATION_FAILURE"}
			return j
		},
	}
	logger = logger_i.NewLogger("TestWorker")
	InitServices(jobSvc, mockPipeline)

	executeJob(jobModel.Job{
		Id:        "job-chat-fail",
		SessionId: "s-chat-fail",
		JobType:   jobModel.JobTypeChat,
		JobPayload: jobModel.JobPayload{
			Question: "hello?",
		},
	})

	session, _ := sessions.GetSession(context.Background(), "s-chat-fail")
	if len(session.Transcript) != 2 {
		t.Errorf("failed chat must not add turns, got %d", len(session.Transcript))
	}
	if session.ExtractedText != "Alice Smith" {
		t.Error("failed chat must not touch extracted text")
	}
	if session.LastError != "LLM_GENERATION_FAILURE" {
		t.Errorf("LastError got %q", session.LastError)
	}
}

func TestExecuteJob_ChatHoldsSessionGuard(t *testing.T) {
	sessions := newMockSessionStore()
	_ = sessions.SaveSession(context.Background(), sessionModel.Session{
		Id:            "s-serial",
		ExtractedText: "Alice Smith\nEngineer",
		Transcript: []sessionModel.ConversationTurn{
			{Role: sessionModel.RoleUser, Content: config.InitialPromptLabel},
			{Role: sessionModel.RoleAssistant, Content: "Strong resume."},
		},
	})

	jobSvc := &job.Service{
		JobStore:     &MockJobStore{},
		SessionStore: sessions,
	}
	mockPipeline := &MockPipelineService{
		OnProcess: func(j jobModel.Job) jobModel.Job {
			j.JobPayload.Answer = "answer to " + j.JobPayload.Question
			j.CurrentStep = jobModel.Complete
			return j
		},
	}
	logger = logger_i.NewLogger("TestWorker")
	InitServices(jobSvc, mockPipeline)

	ctx := context.Background()

	// submission takes the guard; a second chat for the same session is
	// turned away instead of racing the first
	if !sessions.AcquireRun(ctx, "s-serial") {
		t.Fatal("first chat submission should win the guard")
	}
	if sessions.AcquireRun(ctx, "s-serial") {
		t.Error("second chat submission must be rejected while one is running")
	}

	executeJob(jobModel.Job{
		Id:         "chat-1",
		SessionId:  "s-serial",
		JobType:    jobModel.JobTypeChat,
		JobPayload: jobModel.JobPayload{Question: "first question"},
	})

	if !sessions.AcquireRun(ctx, "s-serial") {
		t.Fatal("guard should be free once the chat job finishes")
	}
	executeJob(jobModel.Job{
		Id:         "chat-2",
		SessionId:  "s-serial",
		JobType:    jobModel.JobTypeChat,
		JobPayload: jobModel.JobPayload{Question: "second question"},
	})

	session, _ := sessions.GetSession(ctx, "s-serial")
	if len(session.Transcript) != 6 {
		t.Fatalf("two chat exchanges should leave 6 turns, got %d", len(session.Transcript))
	}
	if session.Transcript[2].Content != "first question" || session.Transcript[4].Content != "second question" {
		t.Error("transcript turns out of submission order")
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 2)
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockPipelineService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}
