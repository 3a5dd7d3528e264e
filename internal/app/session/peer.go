/*
Package session owns one client connection: its transport, its mailbox, and the
state machine that drives the connection from login to teardown.

This file defines the Peer, which merges the connection's two independent
activity sources, inbound network frames and commands injected by other
sessions, into a single ordered event stream.
*/
package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"chirpd/internal/app/protocol"
	"chirpd/internal/app/registry"
)

// EventKind distinguishes the two origins of a session event.
type EventKind int

const (
	// EventReceived carries a command another session wants delivered to this client.
	EventReceived EventKind = iota

	// EventToSend carries a command this client transmitted, to be acted on by the session.
	EventToSend
)

// Event is one element of the merged per-connection stream.
type Event struct {
	Kind EventKind
	Cmd  protocol.Command
}

// inboundFrame is what the read loop hands to Next: a decoded command or a
// terminal transport error.
type inboundFrame struct {
	cmd protocol.Command
	err error
}

// Peer owns one connection's transport and the receiving end of its mailbox.
// Its event stream is consumed exactly once, by the session that owns it; once
// Next reports io.EOF the stream stays terminated.
type Peer struct {
	conn    FrameConn
	mailbox *registry.Mailbox

	// Groups lists the groups this session has joined. It is mutated only by
	// the owning session's goroutine and needs no synchronization.
	Groups []string

	inbound    chan inboundFrame
	closed     chan struct{}
	readerOnce sync.Once
	closeOnce  sync.Once
}

// NewPeer binds a transport and a mailbox into a Peer.
func NewPeer(conn FrameConn, mailbox *registry.Mailbox) *Peer {
	return &Peer{
		conn:    conn,
		mailbox: mailbox,
		inbound: make(chan inboundFrame),
		closed:  make(chan struct{}),
	}
}

// SendCommand encodes command and writes it to the transport, returning the
// byte count written.
func (p *Peer) SendCommand(command protocol.Command) (int, error) {
	frame, err := protocol.Encode(command)
	if err != nil {
		return 0, err
	}
	return p.conn.WriteFrame(frame)
}

// ReadCommand performs a single blocking read-and-decode. It is used only
// during the login phase, before the merged stream starts; a clean close
// surfaces as io.EOF.
func (p *Peer) ReadCommand() (protocol.Command, error) {
	buf := make([]byte, protocol.FrameSize)
	if _, err := p.conn.ReadFrame(buf); err != nil {
		return nil, err
	}
	return protocol.Decode(buf)
}

// Next yields the next event of the merged stream. Pending injected commands
// are drained before the network is waited on, so a recipient never stalls
// receiving messages behind their own slow input. io.EOF marks the end of the
// sequence; any other error is a transport failure and the stream ends on the
// following call.
func (p *Peer) Next(ctx context.Context) (Event, error) {
	p.readerOnce.Do(func() {
		go p.readLoop()
	})

	// Injected messages take priority over the socket.
	select {
	case cmd := <-p.mailbox.Recv():
		return Event{Kind: EventReceived, Cmd: cmd}, nil
	default:
	}

	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()

	case cmd := <-p.mailbox.Recv():
		return Event{Kind: EventReceived, Cmd: cmd}, nil

	case in, ok := <-p.inbound:
		if !ok {
			return Event{}, io.EOF
		}
		if in.err != nil {
			return Event{}, in.err
		}
		return Event{Kind: EventToSend, Cmd: in.cmd}, nil
	}
}

// readLoop pumps frames off the transport into the inbound channel. It stops on
// the first transport or decode failure; closing the channel is what turns into
// io.EOF for Next.
func (p *Peer) readLoop() {
	defer close(p.inbound)

	buf := make([]byte, protocol.FrameSize)
	for {
		_, err := p.conn.ReadFrame(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			p.push(inboundFrame{err: err})
			return
		}

		cmd, err := protocol.Decode(buf)
		if err != nil {
			// A decode failure on a non-empty read is a transport-level error.
			p.push(inboundFrame{err: err})
			return
		}

		if !p.push(inboundFrame{cmd: cmd}) {
			return
		}
	}
}

// push hands a frame to Next, giving up once the peer is closed so the read
// loop cannot outlive its session.
func (p *Peer) push(f inboundFrame) bool {
	select {
	case p.inbound <- f:
		return true
	case <-p.closed:
		return false
	}
}

// Close releases the transport. The read loop, if still running, exits on its
// next operation.
func (p *Peer) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	return p.conn.Close()
}
