package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/subtext-live/subtext/internal/domain"
)

// ErrRelayTaken rejects a second relay-role connection; the caller must
// close the transport with a distinguishing code before any session
// state exists for it.
var ErrRelayTaken = errors.New("relay session already registered")

// Registry owns every live session, indexed by transport peer and by
// stable id, plus the language directory and the single relay pointer.
// One lock serializes all mutations; snapshot methods copy references
// out under the lock so iteration never holds it.
type Registry struct {
	mu         sync.RWMutex
	byPeer     map[domain.Peer]*domain.Session
	byID       map[domain.SessionID]*domain.Session
	langGroups map[string]map[domain.SessionID]*domain.Session
	relayID    domain.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		byPeer:     make(map[domain.Peer]*domain.Session),
		byID:       make(map[domain.SessionID]*domain.Session),
		langGroups: make(map[string]map[domain.SessionID]*domain.Session),
	}
}

// Register creates a session for an accepted connection. The new
// session starts in the default language group. The caller owes the
// greeting payload to the returned session.
func (r *Registry) Register(peer domain.Peer, wantsRelay bool) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wantsRelay && r.relayID != "" {
		return nil, ErrRelayTaken
	}

	role := domain.RoleNormal
	if wantsRelay {
		role = domain.RoleRelay
	}
	sess := domain.NewSession(peer, role)
	r.byPeer[peer] = sess
	r.byID[sess.ID] = sess
	r.addToGroupLocked(sess, sess.PreferredLang())
	if wantsRelay {
		r.relayID = sess.ID
		log.Info().Str("module", "app.registry").Str("sid", string(sess.ID)).Msg("registered relay session")
	}

	log.Info().Str("module", "app.registry").
		Str("sid", string(sess.ID)).
		Bool("relay", wantsRelay).
		Int("total", len(r.byPeer)).
		Msg("session connected")
	return sess, nil
}

// Unregister removes the session bound to a peer. Idempotent: close can
// race with explicit removal, so an unknown peer is a no-op.
func (r *Registry) Unregister(peer domain.Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byPeer[peer]
	if !ok {
		return
	}
	delete(r.byPeer, peer)
	delete(r.byID, sess.ID)
	r.removeFromGroupLocked(sess, sess.PreferredLang())
	if r.relayID == sess.ID {
		r.relayID = ""
		log.Info().Str("module", "app.registry").Msg("relay session disconnected; relay cleared")
	}

	log.Info().Str("module", "app.registry").
		Str("sid", string(sess.ID)).
		Int("total", len(r.byPeer)).
		Msg("session disconnected")
}

func (r *Registry) FindByPeer(peer domain.Peer) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byPeer[peer]
	return sess, ok
}

func (r *Registry) FindByID(id domain.SessionID) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byID[id]
	return sess, ok
}

// RelaySession returns the distinguished relay session, if any.
func (r *Registry) RelaySession() (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.relayID == "" {
		return nil, false
	}
	sess, ok := r.byID[r.relayID]
	return sess, ok
}

// SetLanguage normalizes the raw code and atomically moves the session
// between language groups. A no-op when the language is unchanged. The
// optional display name is applied when non-empty and different.
// Returns the resolved language. Safe to race with Unregister: a
// session that is already gone only has its field updated, groups are
// untouched.
func (r *Registry) SetLanguage(sess *domain.Session, rawLang, displayName string) string {
	newLang := domain.NormalizeLang(rawLang)

	r.mu.Lock()
	if _, live := r.byID[sess.ID]; live {
		if old := sess.PreferredLang(); old != newLang {
			r.removeFromGroupLocked(sess, old)
			sess.SetPreferredLang(newLang)
			r.addToGroupLocked(sess, newLang)
			log.Info().Str("module", "app.registry").Str("sid", string(sess.ID)).Str("lang", newLang).Msg("language updated")
		}
	} else {
		sess.SetPreferredLang(newLang)
	}
	r.mu.Unlock()

	if displayName != "" && displayName != sess.DisplayName() {
		if err := sess.SetDisplayName(displayName); err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Str("sid", string(sess.ID)).Msg("rejected display name")
		} else {
			log.Info().Str("module", "app.registry").Str("sid", string(sess.ID)).Str("name", displayName).Msg("display name updated")
		}
	}
	return newLang
}

// AllSessions returns a point-in-time copy of the live set.
func (r *Registry) AllSessions() []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Session, 0, len(r.byPeer))
	for _, sess := range r.byPeer {
		out = append(out, sess)
	}
	return out
}

// SessionsForLanguage returns a point-in-time copy of one language group.
func (r *Registry) SessionsForLanguage(lang string) []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	group := r.langGroups[domain.NormalizeLang(lang)]
	out := make([]*domain.Session, 0, len(group))
	for _, sess := range group {
		out = append(out, sess)
	}
	return out
}

// Languages returns the codes of all non-empty language groups.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.langGroups))
	for lang := range r.langGroups {
		out = append(out, lang)
	}
	return out
}

// Stats is the read-only view served by the introspection endpoint.
type Stats struct {
	LangGroups     map[string]int `json:"lang_groups"`
	RelayConnected bool           `json:"relay_connected"`
	ActiveSessions int            `json:"active_sessions"`
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make(map[string]int, len(r.langGroups))
	for lang, group := range r.langGroups {
		groups[lang] = len(group)
	}
	return Stats{
		LangGroups:     groups,
		RelayConnected: r.relayID != "",
		ActiveSessions: len(r.byPeer),
	}
}

func (r *Registry) addToGroupLocked(sess *domain.Session, lang string) {
	group, ok := r.langGroups[lang]
	if !ok {
		group = make(map[domain.SessionID]*domain.Session)
		r.langGroups[lang] = group
	}
	group[sess.ID] = sess
}

func (r *Registry) removeFromGroupLocked(sess *domain.Session, lang string) {
	group, ok := r.langGroups[lang]
	if !ok {
		return
	}
	delete(group, sess.ID)
	if len(group) == 0 {
		delete(r.langGroups, lang)
	}
}
