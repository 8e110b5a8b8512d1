// Package ws accepts client connections, decodes inbound frames once
// at the boundary, and hands them to the router in arrival order.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/subtext-live/subtext/internal/app"
	"github.com/subtext-live/subtext/internal/domain"
	"github.com/subtext-live/subtext/internal/protocol"
)

// CloseRelayTaken is the close code sent to a second relay-role
// connection attempt. No session is ever created for it.
const CloseRelayTaken = 4001

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Registry   *app.Registry
	Router     *app.Router
	ReadLimit  int64
	SendBuffer int
}

// Handle upgrades a connection, registers a session, and runs the read
// and write pumps. Clients claim the relay role with ?role=relay.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	wantsRelay := c.Query("role") == "relay"

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}

	conn := newConn(ws, ctl.SendBuffer)
	sess, err := ctl.Registry.Register(conn, wantsRelay)
	if err != nil {
		if errors.Is(err, app.ErrRelayTaken) {
			log.Warn().Str("module", "ws").Msg("second relay connection rejected")
			msg := websocket.FormatCloseMessage(CloseRelayTaken, "relay already connected")
			_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		} else {
			log.Error().Err(err).Str("module", "ws").Msg("register failed")
		}
		_ = ws.Close()
		return
	}

	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	ctl.sendJSON(sess, protocol.Hello{
		Type:          protocol.KindHello,
		ClientID:      string(sess.ID),
		PreferredLang: sess.PreferredLang(),
		DisplayName:   sess.DisplayName(),
		IsRelay:       sess.Role.IsRelay(),
		Time:          protocol.Now(),
	})

	ctx, cancel := context.WithCancel(ctx)
	go conn.writePump(ctx)
	go ctl.readPump(ctx, cancel, sess, conn)
}

// readPump processes inbound frames strictly in arrival order; the
// handler is invoked inline. Connection close is the only cancellation
// signal: it unregisters this session and touches nothing else.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sess *domain.Session, conn *Conn) {
	defer func() {
		log.Info().Str("module", "ws").Str("sid", string(sess.ID)).Msg("readPump closing")
		ctl.Registry.Unregister(conn)
		cancel()
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "ws").Str("sid", string(sess.ID)).Msg("read error")
				}
				return
			}
			msg, err := protocol.Decode(data)
			if err != nil {
				ctl.Router.HandleMalformed(sess, err)
				continue
			}
			ctl.Router.HandleMessage(ctx, sess, msg)
		}
	}
}

func (ctl *Controller) sendJSON(sess *domain.Session, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	if err := sess.Peer.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("sid", string(sess.ID)).Msg("sendJSON failed")
	}
}
