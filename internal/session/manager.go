package session

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/huurnet/huurnet-BE/internal/util"
)

// Session is one page instance: its signal state and its decision engine.
// Two open tabs are two sessions that reach their own conclusions; no state
// is shared between them.
type Session struct {
	ID      string
	UserID  string
	TokenID string
	Signals *Signals
	Engine  *Engine

	lastSeen time.Time
}

// Manager owns the live sessions and sweeps up the ones that ended. Each
// authenticated page opens its own session on load and closes it on teardown;
// the sweep catches pages that never got to say goodbye.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	auth        Authenticator
	idleTimeout time.Duration
	scheduler   gocron.Scheduler
}

func NewManager(auth Authenticator, idleTimeout time.Duration) (*Manager, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Manager{
		sessions:    make(map[string]*Session),
		auth:        auth,
		idleTimeout: idleTimeout,
		scheduler:   scheduler,
	}, nil
}

// Start schedules the periodic sweep of dead sessions.
func (m *Manager) Start() error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(
			func() {
				m.sweep()
			},
		),
	)
	if err != nil {
		return err
	}

	m.scheduler.Start()
	return nil
}

// Stop shuts the sweep down and disposes every remaining session.
func (m *Manager) Stop() error {
	err := m.scheduler.Shutdown()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		sess.Engine.Stop()
		sess.Signals.Dispose()
		delete(m.sessions, id)
	}

	return err
}

// Open creates a new session for one page instance of the user.
func (m *Manager) Open(userID string, tokenID string) *Session {
	signals := NewSignals()
	id := util.NewSessionID()

	sess := &Session{
		ID:       id,
		UserID:   userID,
		TokenID:  tokenID,
		Signals:  signals,
		Engine:   NewEngine(signals, m.auth, id, userID, tokenID),
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	log.Info().Str("session_id", id).Str("user_id", userID).Msg("session opened")
	return sess
}

// Get returns a live session and renews its idle clock.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if ok {
		sess.lastSeen = time.Now()
	}
	return sess, ok
}

// Close disposes a session explicitly, cancelling any pending logout timer.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	sess.Engine.Stop()
	sess.Signals.Dispose()
	log.Info().Str("session_id", id).Msg("session closed")
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// sweep disposes sessions that already signed out or stopped sending signals.
func (m *Manager) sweep() {
	m.mu.Lock()
	var dead []*Session
	now := time.Now()
	for id, sess := range m.sessions {
		if sess.Engine.State() == StateLoggedOut || now.Sub(sess.lastSeen) > m.idleTimeout {
			dead = append(dead, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range dead {
		sess.Engine.Stop()
		sess.Signals.Dispose()
	}

	if len(dead) > 0 {
		log.Info().Int("swept", len(dead)).Msg("swept dead sessions")
	}
}
