package http

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/cart"
)

// Session — одна живая корзина терминала. Все операции над агрегатором
// выполняются под мьютексом сессии: конкурентные запросы по одной сессии
// сериализуются, разные сессии друг другу не мешают.
type Session struct {
	ID string

	mu  sync.Mutex
	agg *cart.Aggregator
}

// Do выполняет операцию над агрегатором сессии под её мьютексом.
func (s *Session) Do(fn func(a *cart.Aggregator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.agg)
}

// SessionManager выдаёт и находит сессии терминалов.
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	directory domain.Directory
	options   []cart.Option
}

// NewSessionManager создаёт менеджер сессий. Опции передаются каждому
// создаваемому агрегатору.
func NewSessionManager(directory domain.Directory, options ...cart.Option) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		directory: directory,
		options:   options,
	}
}

// Create открывает новую сессию с пустой корзиной.
func (m *SessionManager) Create() *Session {
	session := &Session{
		ID:  uuid.NewString(),
		agg: cart.New(m.directory, m.options...),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

// Get возвращает сессию по id.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Restore заменяет корзину сессии снимком черновика. Вызывается под
// мьютексом сессии из Do.
func (m *SessionManager) Restore(session *Session, snapshot domain.Cart) {
	session.agg = cart.NewFromSnapshot(m.directory, snapshot, m.options...)
}

// Close завершает сессию; последующие запросы по её id получают 404.
func (m *SessionManager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}
