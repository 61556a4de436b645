package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/repository"
	"github.com/scholaco/tracker/internal/service"
)

var activeControllers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "scholaco_active_sessions",
	Help: "Session controllers currently held in memory.",
})

// Manager owns one Controller per authenticated session id.
type Manager struct {
	store    repository.ApplicationStore
	resolver Resolver
	mailer   service.Mailer
	cfg      Config
	logger   *zap.Logger

	mu          sync.Mutex
	controllers map[uuid.UUID]*entry
}

type entry struct {
	ctrl *Controller
	once sync.Once
	err  error
}

func NewManager(store repository.ApplicationStore, resolver Resolver, mailer service.Mailer, cfg Config, logger *zap.Logger) *Manager {
	return &Manager{
		store:       store,
		resolver:    resolver,
		mailer:      mailer,
		cfg:         cfg,
		logger:      logger,
		controllers: map[uuid.UUID]*entry{},
	}
}

// Get returns the controller for the session, creating and initializing it
// on first use. A session that no longer resolves is dropped and reported
// as unauthenticated.
func (m *Manager) Get(ctx context.Context, sessionID uuid.UUID) (*Controller, error) {
	m.mu.Lock()
	e, ok := m.controllers[sessionID]
	if !ok {
		e = &entry{ctrl: NewController(sessionID, m.store, m.resolver, m.mailer, m.cfg, m.logger)}
		m.controllers[sessionID] = e
		activeControllers.Inc()
	}
	m.mu.Unlock()

	e.once.Do(func() {
		e.err = e.ctrl.Init(ctx)
	})

	if e.err != nil || e.ctrl.State() != Authenticated {
		m.drop(sessionID, e)
		if e.err != nil {
			return nil, e.err
		}
		return nil, domain.ErrUnauthenticated
	}

	return e.ctrl, nil
}

// SignedOut tears down the controller for the session, if any.
func (m *Manager) SignedOut(sessionID uuid.UUID) {
	m.mu.Lock()
	e, ok := m.controllers[sessionID]
	m.mu.Unlock()

	if ok {
		m.drop(sessionID, e)
	}
}

// Sweep re-resolves every held session and drops those the identity
// provider no longer knows, such as expired or purged sessions that never
// come back through Get. Lookup failures other than Unauthenticated keep the
// entry for the next sweep. It returns the number dropped.
func (m *Manager) Sweep(ctx context.Context) int {
	m.mu.Lock()
	held := make(map[uuid.UUID]*entry, len(m.controllers))
	for id, e := range m.controllers {
		held[id] = e
	}
	m.mu.Unlock()

	dropped := 0
	for id, e := range held {
		if ctx.Err() != nil {
			break
		}
		_, err := m.resolver.CurrentUser(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrUnauthenticated):
			m.drop(id, e)
			dropped++
		default:
			m.logger.Warn("session sweep lookup failed", zap.String("session_id", id.String()), zap.Error(err))
		}
	}

	if dropped > 0 {
		m.logger.Info("swept stale session controllers", zap.Int("count", dropped))
	}
	return dropped
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controllers)
}

func (m *Manager) drop(sessionID uuid.UUID, e *entry) {
	m.mu.Lock()
	if m.controllers[sessionID] == e {
		delete(m.controllers, sessionID)
		activeControllers.Dec()
	}
	m.mu.Unlock()

	e.ctrl.SignedOut()
}
