/*
Package handler provides the admin HTTP handlers and routing setup for the chirpd server.

This file contains the WebSocket bridge: it upgrades the HTTP connection and runs
the same session stack as the TCP listener, carrying one wire frame per binary
WebSocket message.
*/
package handler

import (
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"chirpd/internal/app/protocol"
	"chirpd/internal/app/session"
	"chirpd/internal/pkg/errs"
	"chirpd/internal/pkg/logx"
	"chirpd/internal/pkg/metrics"
)

// wsFrameConn adapts a WebSocket connection to the session.FrameConn contract.
// Each binary message carries exactly one frame.
type wsFrameConn struct {
	conn *websocket.Conn
}

func (c *wsFrameConn) ReadFrame(buf []byte) (int, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}

		if messageType != websocket.BinaryMessage {
			// Text and control payloads are not part of the wire protocol.
			continue
		}

		if len(data) != protocol.FrameSize {
			return 0, errs.NewError(errs.ErrBadFrameSize, protocol.FrameSize, len(data))
		}

		copy(buf, data)
		return protocol.FrameSize, nil
	}
}

func (c *wsFrameConn) WriteFrame(frame []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return 0, err
	}
	return len(frame), nil
}

func (c *wsFrameConn) Close() error {
	return c.conn.Close()
}

// HandleWebSocket creates an HTTP HandlerFunc that upgrades the connection and
// runs a chat session over it to completion.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Warn("WebSocket upgrade failed", "error", err.Error())
			return
		}

		metrics.ConnectionsTotal.WithLabelValues("websocket").Inc()
		metrics.ConnectionsCurrent.WithLabelValues("websocket").Inc()
		defer metrics.ConnectionsCurrent.WithLabelValues("websocket").Dec()

		sess := session.New(&wsFrameConn{conn: wsConn}, deps.Registry, deps.Directory, deps.Config.Limits.MailboxCapacity)
		if err := sess.Run(r.Context()); err != nil {
			logx.Debug("WebSocket session ended with login failure", "error", err.Error())
		}
	}
}
