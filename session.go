package main

import (
	"sync"
	"time"
)

const (
	maxSessions     = 100
	sessionIdleTime = 10 * time.Minute
)

// Session is one joinable game with its own field and grid
type Session struct {
	ID         string
	Name       string
	Game       *Game
	LastActive time.Time
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	cfg       Config
	db        *DB
	analytics *Analytics
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(cfg Config, db *DB, analytics *Analytics) *SessionManager {
	sm := &SessionManager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		db:        db,
		analytics: analytics,
	}
	go sm.sweepIdle()
	return sm
}

// CreateSession creates a new game session. Returns nil if limit reached.
func (sm *SessionManager) CreateSession(name string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := GenerateUUID()
	game := NewGame(id, sm.cfg, sm.db, sm.analytics)
	sess := &Session{
		ID:         id,
		Name:       name,
		Game:       game,
		LastActive: time.Now(),
	}
	sm.sessions[id] = sess
	go game.Run()

	if sm.analytics != nil {
		sm.analytics.Track(EvtSessionStart, 0, id, "")
	}
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// MarkActive bumps the session's idle timer
func (sm *SessionManager) MarkActive(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sess, ok := sm.sessions[id]; ok {
		sess.LastActive = time.Now()
	}
}

// RemovePlayer removes a player from a session
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.Game.RemovePlayer(playerID)

	// Clean up empty sessions
	if sess.Game.PlayerCount() == 0 {
		sm.removeSession(sessionID)
	}
}

func (sm *SessionManager) removeSession(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
	if !ok {
		return
	}
	sess.Game.Stop()
	if sm.analytics != nil {
		sm.analytics.Track(EvtSessionEnd, 0, id, "")
	}
}

// sweepIdle drops empty sessions that nobody touched for a while
func (sm *SessionManager) sweepIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-sessionIdleTime)
		sm.mu.RLock()
		var stale []string
		for id, sess := range sm.sessions {
			if sess.Game.PlayerCount() == 0 && sess.LastActive.Before(cutoff) {
				stale = append(stale, id)
			}
		}
		sm.mu.RUnlock()
		for _, id := range stale {
			sm.removeSession(id)
		}
	}
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Players: sess.Game.PlayerCount(),
		})
	}
	return list
}

// SessionCount returns the number of live sessions
func (sm *SessionManager) SessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
