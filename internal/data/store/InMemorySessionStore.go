package store

import (
	"context"
	"sync"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
)

type InMemorySessionStore struct {
	lock       *sync.RWMutex
	sessions   map[string]sessionModel.Session
	portfolios map[string]sessionModel.Portfolio
	activeRuns map[string]bool
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		lock:       new(sync.RWMutex),
		sessions:   make(map[string]sessionModel.Session),
		portfolios: make(map[string]sessionModel.Portfolio),
		activeRuns: make(map[string]bool),
	}
}

func (store *InMemorySessionStore) InitSession(ctx context.Context, id string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.sessions[id] = sessionModel.Session{
		Id:          id,
		UpdatedTime: time.Now(),
	}
	return nil
}

func (store *InMemorySessionStore) GetSession(ctx context.Context, id string) (sessionModel.Session, bool) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	session, found := store.sessions[id]
	return session, found
}

func (store *InMemorySessionStore) SaveSession(ctx context.Context, session sessionModel.Session) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	session.UpdatedTime = time.Now()
	store.sessions[session.Id] = session
	return nil
}

func (store *InMemorySessionStore) AcquireRun(ctx context.Context, id string) bool {
	store.lock.Lock()
	defer store.lock.Unlock()
	if store.activeRuns[id] {
		return false
	}
	store.activeRuns[id] = true
	return true
}

func (store *InMemorySessionStore) ReleaseRun(ctx context.Context, id string) {
	store.lock.Lock()
	defer store.lock.Unlock()
	delete(store.activeRuns, id)
}

func (store *InMemorySessionStore) SavePortfolio(ctx context.Context, portfolio sessionModel.Portfolio) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	//last publish for a username wins, no uniqueness check
	store.portfolios[portfolio.Username] = portfolio
	return nil
}

func (store *InMemorySessionStore) GetPortfolio(ctx context.Context, username string) (sessionModel.Portfolio, bool) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	portfolio, found := store.portfolios[username]
	return portfolio, found
}
