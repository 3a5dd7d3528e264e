/*
Package session owns one client connection: its transport, its mailbox, and the
state machine that drives the connection from login to teardown.

This file defines the frame-level transport contract and its TCP implementation.
A transport moves whole fixed-size frames; the WebSocket bridge in the handler
package provides a second implementation of the same interface.
*/
package session

import (
	"io"
	"net"

	"chirpd/internal/app/protocol"
)

// FrameConn moves whole wire frames. ReadFrame returns io.EOF when the peer has
// closed the connection cleanly; any partial frame is a transport error.
type FrameConn interface {
	// ReadFrame fills buf (len protocol.FrameSize) with exactly one frame.
	ReadFrame(buf []byte) (int, error)

	// WriteFrame writes one whole frame, returning the byte count written.
	WriteFrame(frame []byte) (int, error)

	// Close releases the underlying connection.
	Close() error
}

// netFrameConn adapts a stream-oriented net.Conn to the frame contract.
type netFrameConn struct {
	conn net.Conn
}

// NewNetFrameConn wraps a TCP (or in-memory pipe) connection as a FrameConn.
func NewNetFrameConn(conn net.Conn) FrameConn {
	return &netFrameConn{conn: conn}
}

func (c *netFrameConn) ReadFrame(buf []byte) (int, error) {
	// ReadFull distinguishes a clean close before any byte (io.EOF) from a
	// connection lost mid-frame (io.ErrUnexpectedEOF).
	return io.ReadFull(c.conn, buf[:protocol.FrameSize])
}

func (c *netFrameConn) WriteFrame(frame []byte) (int, error) {
	return c.conn.Write(frame)
}

func (c *netFrameConn) Close() error {
	return c.conn.Close()
}
