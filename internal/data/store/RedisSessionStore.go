package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/data/redisStore"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

const (
	sessionKeyPrefix   = "session:"
	portfolioKeyPrefix = "portfolio:"
	runGuardKeyPrefix  = "run:"
)

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisSessionStore returns nil when Redis is offline so the caller can
// fall back to the in-memory store.
func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	rs := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if rs == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  rs,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) InitSession(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", id)
	log.Debug("initializing session")
	return s.SaveSession(ctx, sessionModel.Session{Id: id})
}

func (s *RedisSessionStore) SaveSession(ctx context.Context, session sessionModel.Session) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", session.Id)
	session.UpdatedTime = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, sessionKeyPrefix+session.Id, data, config.RedisSessionStoreTTL)
	if err != nil {
		log.Error("error saving session", "error", err)
	}
	return err
}

func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (sessionModel.Session, bool) {
	var session sessionModel.Session
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", id)
	val, err := s.store.Get(ctx, sessionKeyPrefix+id)
	if s.store.IsNil(err) {
		return session, false
	} else if err != nil {
		log.Error("error getting session", "error", err)
		return session, false
	}

	if err = json.Unmarshal([]byte(val), &session); err != nil {
		return session, false
	}
	return session, true
}

func (s *RedisSessionStore) AcquireRun(ctx context.Context, id string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", id)
	acquired, err := s.store.SetNX(ctx, runGuardKeyPrefix+id, "1", config.RunGuardTTL)
	if err != nil {
		log.Error("error acquiring run guard", "error", err)
		return false
	}
	return acquired
}

func (s *RedisSessionStore) ReleaseRun(ctx context.Context, id string) {
	if err := s.store.Del(ctx, runGuardKeyPrefix+id); err != nil {
		s.logger.Error("error releasing run guard", "session Id", id, "error", err)
	}
}

func (s *RedisSessionStore) SavePortfolio(ctx context.Context, portfolio sessionModel.Portfolio) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "username", portfolio.Username)
	data, err := json.Marshal(portfolio)
	if err != nil {
		return err
	}

	//last publish for a username wins
	err = s.store.Set(ctx, portfolioKeyPrefix+portfolio.Username, data, config.RedisSessionStoreTTL)
	if err != nil {
		log.Error("error saving portfolio", "error", err)
	}
	return err
}

func (s *RedisSessionStore) GetPortfolio(ctx context.Context, username string) (sessionModel.Portfolio, bool) {
	var portfolio sessionModel.Portfolio
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "username", username)
	val, err := s.store.Get(ctx, portfolioKeyPrefix+username)
	if s.store.IsNil(err) {
		return portfolio, false
	} else if err != nil {
		log.Error("error getting portfolio", "error", err)
		return portfolio, false
	}

	if err = json.Unmarshal([]byte(val), &portfolio); err != nil {
		return portfolio, false
	}
	return portfolio, true
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
