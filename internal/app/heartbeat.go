package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/subtext-live/subtext/internal/protocol"
)

// Heartbeat periodically pushes one identical liveness payload to every
// live session. A bad peer never stops the cycle for the others, and
// the loop itself only exits with the process.
type Heartbeat struct {
	Registry *Registry
	Interval time.Duration
	Backoff  time.Duration
}

func (h *Heartbeat) Run(ctx context.Context) {
	interval := h.Interval
	if interval <= 0 {
		interval = time.Second
	}
	backoff := h.Backoff
	if backoff <= 0 {
		backoff = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.heartbeat").Dur("interval", interval).Msg("heartbeat started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.heartbeat").Msg("heartbeat stopped")
			return
		case <-ticker.C:
			if err := h.Tick(); err != nil {
				log.Error().Err(err).Str("module", "app.heartbeat").Msg("heartbeat cycle failed")
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
			}
		}
	}
}

// Tick sends one heartbeat to every live session. No sessions, no sends.
func (h *Heartbeat) Tick() error {
	sessions := h.Registry.AllSessions()
	if len(sessions) == 0 {
		return nil
	}

	payload := protocol.NewHeartbeat(fmt.Sprintf("Server active, %d", 1000+rand.Intn(9000)))
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal heartbeat: %w", err)
	}
	for _, sess := range sessions {
		if err := sess.Peer.TrySend(data); err != nil {
			log.Warn().Err(err).Str("module", "app.heartbeat").Str("sid", string(sess.ID)).Msg("heartbeat send failed")
		}
	}
	return nil
}
