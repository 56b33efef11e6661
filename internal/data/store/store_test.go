package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/data/redisStore"
	"github.com/resumeatlas/ResumeAPI/internal/data/store"
	"github.com/resumeatlas/ResumeAPI/internal/domain/jobModel"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:      jobID,
		Status:  jobModel.JobStatusRunning,
		JobType: jobModel.JobTypeAnalyze,
		JobPayload: jobModel.JobPayload{
			FileName:  "resume.pdf",
			MediaType: "application/pdf",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.JobPayload.FileName != testJob.JobPayload.FileName {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.FileName, testJob.JobPayload.FileName)
		}
		if retrievedJob.JobType != jobModel.JobTypeAnalyze {
			t.Errorf("JobType mismatch! Got %s", retrievedJob.JobType)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	sessionID := "session_xyz_789"

	t.Run("Init and Get", func(t *testing.T) {
		if err := sessionStore.InitSession(ctx, sessionID); err != nil {
			t.Fatalf("InitSession failed: %v", err)
		}

		session, found := sessionStore.GetSession(ctx, sessionID)
		if !found {
			t.Fatal("Session was initialized but not found")
		}
		if session.Id != sessionID {
			t.Errorf("Id mismatch! Got %s, want %s", session.Id, sessionID)
		}
		if len(session.Transcript) != 0 {
			t.Errorf("Fresh session should have empty transcript, got %d turns", len(session.Transcript))
		}
	})

	t.Run("Save preserves transcript order", func(t *testing.T) {
		session, _ := sessionStore.GetSession(ctx, sessionID)
		session.ExtractedText = "Alice Smith\nEngineer"
		session.Transcript = []sessionModel.ConversationTurn{
			{Role: sessionModel.RoleUser, Content: "Please analyze my resume"},
			{Role: sessionModel.RoleAssistant, Content: "Looks solid."},
		}
		if err := sessionStore.SaveSession(ctx, session); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}

		retrieved, found := sessionStore.GetSession(ctx, sessionID)
		if !found {
			t.Fatal("saved session not found")
		}
		if len(retrieved.Transcript) != 2 {
			t.Fatalf("expected 2 turns, got %d", len(retrieved.Transcript))
		}
		if retrieved.Transcript[0].Role != sessionModel.RoleUser ||
			retrieved.Transcript[1].Role != sessionModel.RoleAssistant {
			t.Error("transcript roles out of order after roundtrip")
		}
	})

	t.Run("Get Non-Existent Session", func(t *testing.T) {
		_, found := sessionStore.GetSession(ctx, "ghost-session")
		if found {
			t.Error("Expected found=false for non-existent session")
		}
	})
}

func TestRedisSessionStore_RunGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "guard-trace")
	sessionID := "busy-session"

	if !sessionStore.AcquireRun(ctx, sessionID) {
		t.Fatal("first AcquireRun should succeed")
	}
	if sessionStore.AcquireRun(ctx, sessionID) {
		t.Error("second AcquireRun should fail while first is active")
	}

	sessionStore.ReleaseRun(ctx, sessionID)

	if !sessionStore.AcquireRun(ctx, sessionID) {
		t.Error("AcquireRun should succeed again after ReleaseRun")
	}

	// The guard key carries a TTL so a crashed worker cannot wedge the session.
	mr.FastForward(config.RunGuardTTL)
	sessionStore.ReleaseRun(ctx, sessionID)
	if !sessionStore.AcquireRun(ctx, sessionID) {
		t.Error("AcquireRun should succeed after guard TTL expiry")
	}
}

func TestRedisSessionStore_Portfolio(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "portfolio-trace")

	published := sessionModel.Portfolio{
		Username:      "alice",
		SessionId:     "session_1",
		ExtractedText: "Alice Smith\nEngineer",
		Transcript: []sessionModel.ConversationTurn{
			{Role: sessionModel.RoleUser, Content: "Please analyze my resume"},
		},
	}

	t.Run("Save and Get", func(t *testing.T) {
		if err := sessionStore.SavePortfolio(ctx, published); err != nil {
			t.Fatalf("SavePortfolio failed: %v", err)
		}

		got, found := sessionStore.GetPortfolio(ctx, "alice")
		if !found {
			t.Fatal("portfolio was published but not found")
		}
		if got.ExtractedText != published.ExtractedText {
			t.Errorf("ExtractedText mismatch! Got %q", got.ExtractedText)
		}
	})

	t.Run("Republish overwrites", func(t *testing.T) {
		updated := published
		updated.SessionId = "session_2"
		if err := sessionStore.SavePortfolio(ctx, updated); err != nil {
			t.Fatalf("SavePortfolio failed: %v", err)
		}

		got, _ := sessionStore.GetPortfolio(ctx, "alice")
		if got.SessionId != "session_2" {
			t.Errorf("republish should win: got session %s", got.SessionId)
		}
	})

	t.Run("Unknown username", func(t *testing.T) {
		_, found := sessionStore.GetPortfolio(ctx, "nobody")
		if found {
			t.Error("Expected found=false for unknown username")
		}
	})
}
