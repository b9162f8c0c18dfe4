package session

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	userID string
	exp    time.Time
}

// MemoryStore keeps sessions in a mutex-guarded map. Expired entries are
// evicted lazily on Resolve and reclaimed by a periodic sweep, so abandoned
// tokens do not accumulate for the life of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	m    map[string]memEntry
	stop chan struct{}
	once sync.Once
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &MemoryStore{
		ttl:  ttl,
		m:    make(map[string]memEntry),
		stop: make(chan struct{}),
	}

	go s.sweepLoop()

	return s
}

func (s *MemoryStore) Create(_ context.Context, userID string) (string, error) {
	token, err := newToken()

	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.m[token] = memEntry{userID: userID, exp: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (string, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.m[token]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()
		return "", ErrNotFound
	}

	return e.userID, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()

	return nil
}

// Close stops the sweeper goroutine.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweepLoop() {
	interval := s.ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-t.C:
			s.sweep(now)
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	for token, e := range s.m {
		if now.After(e.exp) {
			delete(s.m, token)
		}
	}
	s.mu.Unlock()
}
