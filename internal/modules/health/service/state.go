package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// State: то, что отдают livez/readyz/healthz. Заполняется модулями по мере старта.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	mu          sync.RWMutex
	storeDriver string
	storeCheck  func(context.Context) error

	lastUpstreamUnix atomic.Int64 // последний успешный ответ биржи
}

func NewState() *State {
	return &State{startedAt: time.Now(), storeDriver: "none"}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetStoreDriver(d string) {
	s.mu.Lock()
	s.storeDriver = d
	s.mu.Unlock()
}

func (s *State) StoreDriver() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storeDriver
}

// SetStoreCheck: пинг базы учёток. У in-memory хранилища проверки нет.
func (s *State) SetStoreCheck(check func(context.Context) error) {
	s.mu.Lock()
	s.storeCheck = check
	s.mu.Unlock()
}

func (s *State) CheckStore(ctx context.Context) error {
	s.mu.RLock()
	check := s.storeCheck
	s.mu.RUnlock()
	if check == nil {
		return nil
	}
	return check(ctx)
}

func (s *State) TouchUpstream(t time.Time) { s.lastUpstreamUnix.Store(t.Unix()) }

func (s *State) LastUpstream() time.Time {
	u := s.lastUpstreamUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
