// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	MaxDisplayNameLen = 36
	DefaultLang       = "en"
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

type SessionID string

// Role distinguishes the single relay device from ordinary clients.
type Role int

const (
	RoleNormal Role = iota
	RoleRelay
)

func (r Role) IsRelay() bool { return r == RoleRelay }

// Peer abstracts the transport endpoint of one connection.
// Owned by the adapter; the adapter must Close() it.
type Peer interface {
	TrySend(data []byte) error
	Close()
}

// Session is the server-side state for one live connection.
// PreferredLang and DisplayName are guarded by the session's own
// mutex so routing snapshots can read them while the registry moves
// the session between language groups.
type Session struct {
	ID   SessionID
	Peer Peer
	Role Role

	mu            sync.RWMutex
	preferredLang string
	displayName   string
}

func NewSession(peer Peer, role Role) *Session {
	id := SessionID(uuid.NewString())
	return &Session{
		ID:            id,
		Peer:          peer,
		Role:          role,
		preferredLang: DefaultLang,
		displayName:   "Client-" + string(id)[:8],
	}
}

func (s *Session) PreferredLang() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferredLang
}

func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName
}

// SetPreferredLang stores a normalized language code. Group membership
// is the registry's concern; callers move the session between groups.
func (s *Session) SetPreferredLang(lang string) {
	s.mu.Lock()
	s.preferredLang = lang
	s.mu.Unlock()
}

// SetDisplayName validates and updates the human-readable label.
func (s *Session) SetDisplayName(name string) error {
	if len(name) == 0 {
		return ErrDisplayNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrDisplayNameTooLong
	}
	s.mu.Lock()
	s.displayName = name
	s.mu.Unlock()
	return nil
}

// NormalizeLang lower-cases an app-level language code; blank input
// coerces to the default language.
func NormalizeLang(raw string) string {
	norm := strings.ToLower(strings.TrimSpace(raw))
	if norm == "" {
		return DefaultLang
	}
	return norm
}
