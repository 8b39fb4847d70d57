package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/application"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/metrics"
)

// Factory はセッションIDから新しい予約セッションを作成する
type Factory func(id string) *application.BookingSession

type entry struct {
	session    *application.BookingSession
	lastAccess time.Time
}

// Manager は予約セッションの生成・参照・破棄をインメモリで管理する
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	factory  Factory
	metrics  *metrics.Metrics // nil可
	now      func() time.Time
}

// NewManager は新しいManagerを作成する
func NewManager(factory Factory, m *metrics.Metrics) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		factory:  factory,
		metrics:  m,
		now:      time.Now,
	}
}

// Create は新しい予約セッションを作成して登録する
func (mg *Manager) Create() *application.BookingSession {
	id := uuid.New().String()
	s := mg.factory(id)

	mg.mu.Lock()
	mg.sessions[id] = &entry{session: s, lastAccess: mg.now()}
	count := len(mg.sessions)
	mg.mu.Unlock()

	mg.setActive(count)
	logger.Info("セッションを作成", zap.String("session_id", id))
	return s
}

// Get はIDでセッションを取得し、最終アクセス時刻を更新する
func (mg *Manager) Get(id string) (*application.BookingSession, error) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	e, ok := mg.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastAccess = mg.now()
	return e.session, nil
}

// Delete はセッションを破棄する
func (mg *Manager) Delete(id string) error {
	mg.mu.Lock()
	if _, ok := mg.sessions[id]; !ok {
		mg.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(mg.sessions, id)
	count := len(mg.sessions)
	mg.mu.Unlock()

	mg.setActive(count)
	logger.Info("セッションを破棄", zap.String("session_id", id))
	return nil
}

// CleanupExpired は最終アクセスからolderThan以上経過したセッションを破棄し、
// 破棄した件数を返す
func (mg *Manager) CleanupExpired(olderThan time.Duration) int {
	cutoff := mg.now().Add(-olderThan)

	mg.mu.Lock()
	removed := 0
	for id, e := range mg.sessions {
		if e.lastAccess.Before(cutoff) {
			delete(mg.sessions, id)
			removed++
		}
	}
	count := len(mg.sessions)
	mg.mu.Unlock()

	if removed > 0 {
		mg.setActive(count)
		logger.Info("期限切れセッションを破棄",
			zap.Int("removed", removed),
			zap.Int("remaining", count),
		)
	}
	return removed
}

// Count は登録中のセッション数を返す
func (mg *Manager) Count() int {
	mg.mu.RLock()
	defer mg.mu.RUnlock()
	return len(mg.sessions)
}

func (mg *Manager) setActive(count int) {
	if mg.metrics != nil {
		mg.metrics.ActiveSessions.Set(float64(count))
	}
}
