package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtext-live/subtext/internal/domain"
)

type fakePeer struct {
	mu       sync.Mutex
	sent     [][]byte
	failSend bool
}

func (p *fakePeer) TrySend(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSend {
		return errors.New("send failed")
	}
	p.sent = append(p.sent, data)
	return nil
}

func (p *fakePeer) Close() {}

func (p *fakePeer) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

// requireGroupConsistency asserts that every live session appears in
// the language directory under exactly its current preferred language.
func requireGroupConsistency(t *testing.T, r *Registry) {
	t.Helper()
	for _, sess := range r.AllSessions() {
		for _, lang := range r.Languages() {
			found := false
			for _, member := range r.SessionsForLanguage(lang) {
				if member.ID == sess.ID {
					found = true
				}
			}
			if lang == sess.PreferredLang() {
				require.True(t, found, "session %s missing from its group %q", sess.ID, lang)
			} else {
				require.False(t, found, "session %s present in foreign group %q", sess.ID, lang)
			}
		}
	}
}

func TestRegistry_RegisterDefaults(t *testing.T) {
	r := NewRegistry()
	sess, err := r.Register(&fakePeer{}, false)
	require.NoError(t, err)

	assert.Equal(t, "en", sess.PreferredLang())
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "Client-"+string(sess.ID)[:8], sess.DisplayName())
	assert.False(t, sess.Role.IsRelay())
	requireGroupConsistency(t, r)
}

func TestRegistry_SingleRelayInvariant(t *testing.T) {
	r := NewRegistry()
	relay, err := r.Register(&fakePeer{}, true)
	require.NoError(t, err)
	require.True(t, relay.Role.IsRelay())

	_, err = r.Register(&fakePeer{}, true)
	require.ErrorIs(t, err, ErrRelayTaken)

	// the existing relay is untouched by the rejected attempt
	got, ok := r.RelaySession()
	require.True(t, ok)
	assert.Equal(t, relay.ID, got.ID)
	assert.Equal(t, 1, r.Stats().ActiveSessions)
}

func TestRegistry_RelayClearedOnUnregister(t *testing.T) {
	r := NewRegistry()
	peer := &fakePeer{}
	_, err := r.Register(peer, true)
	require.NoError(t, err)

	r.Unregister(peer)
	_, ok := r.RelaySession()
	assert.False(t, ok)

	// the slot is free again
	_, err = r.Register(&fakePeer{}, true)
	assert.NoError(t, err)
}

func TestRegistry_SetLanguageMovesGroups(t *testing.T) {
	r := NewRegistry()
	sess, err := r.Register(&fakePeer{}, false)
	require.NoError(t, err)

	resolved := r.SetLanguage(sess, "ES-419", "")
	assert.Equal(t, "es-419", resolved)
	assert.Equal(t, "es-419", sess.PreferredLang())
	requireGroupConsistency(t, r)

	assert.Empty(t, r.SessionsForLanguage("en"))
	require.Len(t, r.SessionsForLanguage("es-419"), 1)
}

func TestRegistry_SetLanguageIdempotent(t *testing.T) {
	r := NewRegistry()
	sess, err := r.Register(&fakePeer{}, false)
	require.NoError(t, err)

	r.SetLanguage(sess, "en", "")
	requireGroupConsistency(t, r)
	assert.Len(t, r.SessionsForLanguage("en"), 1)
}

func TestRegistry_SetLanguageBlankCoercesToDefault(t *testing.T) {
	r := NewRegistry()
	sess, err := r.Register(&fakePeer{}, false)
	require.NoError(t, err)
	r.SetLanguage(sess, "es", "")

	resolved := r.SetLanguage(sess, "   ", "")
	assert.Equal(t, "en", resolved)
	requireGroupConsistency(t, r)
}

func TestRegistry_SetLanguageUpdatesDisplayName(t *testing.T) {
	r := NewRegistry()
	sess, err := r.Register(&fakePeer{}, false)
	require.NoError(t, err)

	r.SetLanguage(sess, "fr", "Alice")
	assert.Equal(t, "Alice", sess.DisplayName())

	// an over-long name is rejected, keeping the previous one
	r.SetLanguage(sess, "fr", string(make([]byte, domain.MaxDisplayNameLen+1)))
	assert.Equal(t, "Alice", sess.DisplayName())
}

func TestRegistry_UnregisterUnknownPeerIsNoop(t *testing.T) {
	r := NewRegistry()
	peer := &fakePeer{}
	_, err := r.Register(peer, false)
	require.NoError(t, err)

	r.Unregister(&fakePeer{})
	assert.Equal(t, 1, r.Stats().ActiveSessions)

	r.Unregister(peer)
	r.Unregister(peer)
	assert.Equal(t, 0, r.Stats().ActiveSessions)
	requireGroupConsistency(t, r)
}

func TestRegistry_GroupConsistencyAcrossLifecycle(t *testing.T) {
	r := NewRegistry()
	peers := make([]*fakePeer, 0, 5)
	sessions := make([]*domain.Session, 0, 5)
	for i := 0; i < 5; i++ {
		p := &fakePeer{}
		s, err := r.Register(p, false)
		require.NoError(t, err)
		peers = append(peers, p)
		sessions = append(sessions, s)
		requireGroupConsistency(t, r)
	}

	langs := []string{"es", "zh-hans", "en", "pt-br", "es"}
	for i, s := range sessions {
		r.SetLanguage(s, langs[i], "")
		requireGroupConsistency(t, r)
	}

	for _, p := range peers {
		r.Unregister(p)
		requireGroupConsistency(t, r)
	}
	assert.Empty(t, r.Languages())
}

func TestRegistry_Stats(t *testing.T) {
	r := NewRegistry()
	p1, p2 := &fakePeer{}, &fakePeer{}
	s1, err := r.Register(p1, true)
	require.NoError(t, err)
	_, err = r.Register(p2, false)
	require.NoError(t, err)
	r.SetLanguage(s1, "es", "")

	stats := r.Stats()
	assert.True(t, stats.RelayConnected)
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, map[string]int{"en": 1, "es": 1}, stats.LangGroups)
}

func TestRegistry_SnapshotSafeDuringMutation(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 10; i++ {
		_, err := r.Register(&fakePeer{}, false)
		require.NoError(t, err)
	}

	snapshot := r.AllSessions()
	require.Len(t, snapshot, 10)

	var wg sync.WaitGroup
	for _, sess := range snapshot {
		sess := sess
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.SetLanguage(sess, "es", "")
		}()
	}
	for _, sess := range snapshot {
		r.Unregister(sess.Peer)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Stats().ActiveSessions)
	assert.Empty(t, r.Languages())
}
