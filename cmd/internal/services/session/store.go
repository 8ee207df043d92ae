package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhukovvlad/designfee-go/cmd/internal/services/apierrors"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// Store - потокобезопасное хранилище сессий в памяти.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *logging.Logger
}

// NewStore создает хранилище. Сессии, не изменявшиеся дольше ttl, удаляются
// при создании новых; ttl <= 0 отключает удаление.
func NewStore(ttl time.Duration, logger *logging.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Create заводит новую пустую сессию и возвращает её копию.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	return *sess.clone()
}

// Get возвращает копию сессии или NotFoundError.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, apierrors.NewNotFoundError("сессия %s не найдена", id)
	}
	return *sess.clone(), nil
}

// Update применяет fn к копии сессии и сохраняет её, только если fn не вернула ошибку.
// Так частично обновлённое состояние этапа никогда не попадает в хранилище.
func (s *Store) Update(id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, apierrors.NewNotFoundError("сессия %s не найдена", id)
	}

	draft := sess.clone()
	if err := fn(draft); err != nil {
		return *sess.clone(), err
	}
	draft.UpdatedAt = s.now()
	draft.Revision++
	s.sessions[id] = draft
	return *draft.clone(), nil
}

// UpdateAt работает как Update, но только если сессия не менялась после
// чтения ревизии rev. Иначе возвращается ConflictError и ничего не сохраняется.
func (s *Store) UpdateAt(id string, rev int64, fn func(*Session) error) (Session, error) {
	return s.Update(id, func(sess *Session) error {
		if sess.Revision != rev {
			return apierrors.NewConflictError("сессия %s изменилась во время расчёта, повторите запрос", id)
		}
		return fn(sess)
	})
}

// Delete удаляет сессию.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len возвращает число активных сессий.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) evictLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.WithField("method", "evict").Infof("Удалено устаревших сессий: %d", evicted)
	}
}
