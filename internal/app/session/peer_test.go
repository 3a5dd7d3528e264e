package session

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirpd/internal/app/protocol"
	"chirpd/internal/app/registry"
	"chirpd/internal/pkg/errs"
)

func newTestPeer(t *testing.T) (*Peer, net.Conn, *registry.Mailbox) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() {
		serverConn.Close()
		clientConn.Close()
	})

	mb := registry.NewMailbox(0)
	peer := NewPeer(NewNetFrameConn(serverConn), mb)
	t.Cleanup(func() { peer.Close() })

	return peer, clientConn, mb
}

func writeFrame(t *testing.T, conn net.Conn, cmd protocol.Command) {
	t.Helper()
	frame, err := protocol.Encode(cmd)
	require.NoError(t, err)
	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Write(frame)
	require.NoError(t, err)
}

func readFrame(t *testing.T, conn net.Conn) protocol.Command {
	t.Helper()
	buf := make([]byte, protocol.FrameSize)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := io.ReadFull(conn, buf)
	require.NoError(t, err)
	cmd, err := protocol.Decode(buf)
	require.NoError(t, err)
	return cmd
}

func TestPeer_InjectedMessageYieldsReceived(t *testing.T) {
	req := require.New(t)
	peer, _, mb := newTestPeer(t)

	injected := protocol.Msg{Sender: "bob", Target: "alice", Text: "hi"}
	req.NoError(mb.Put(injected))

	event, err := peer.Next(context.Background())
	req.NoError(err)
	req.Equal(EventReceived, event.Kind)
	req.Equal(injected, event.Cmd)
}

func TestPeer_InjectedMessagesDrainBeforeSocket(t *testing.T) {
	req := require.New(t)
	peer, clientConn, mb := newTestPeer(t)

	// Both sources ready: write a frame first, then inject.
	done := make(chan struct{})
	go func() {
		defer close(done)
		writeFrame(t, clientConn, protocol.Join{Name: "#team"})
	}()

	injected := protocol.Msg{Sender: "bob", Target: "alice", Text: "first"}
	req.NoError(mb.Put(injected))

	// The injected message must come out ahead of the already-written frame.
	event, err := peer.Next(context.Background())
	req.NoError(err)
	req.Equal(EventReceived, event.Kind)
	req.Equal(injected, event.Cmd)

	event, err = peer.Next(context.Background())
	req.NoError(err)
	req.Equal(EventToSend, event.Kind)
	req.Equal(protocol.Join{Name: "#team"}, event.Cmd)

	<-done
}

func TestPeer_SocketFrameYieldsToSend(t *testing.T) {
	req := require.New(t)
	peer, clientConn, _ := newTestPeer(t)

	go writeFrame(t, clientConn, protocol.Leave{Name: "#team"})

	event, err := peer.Next(context.Background())
	req.NoError(err)
	req.Equal(EventToSend, event.Kind)
	req.Equal(protocol.Leave{Name: "#team"}, event.Cmd)
}

func TestPeer_CleanCloseEndsStream(t *testing.T) {
	req := require.New(t)
	peer, clientConn, _ := newTestPeer(t)

	clientConn.Close()

	_, err := peer.Next(context.Background())
	req.ErrorIs(err, io.EOF)

	// The stream is not restartable.
	_, err = peer.Next(context.Background())
	req.ErrorIs(err, io.EOF)
}

func TestPeer_DecodeFailureIsTerminal(t *testing.T) {
	req := require.New(t)
	peer, clientConn, _ := newTestPeer(t)

	go func() {
		frame := make([]byte, protocol.FrameSize)
		frame[0] = 0xFF
		clientConn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		clientConn.Write(frame)
		clientConn.Close()
	}()

	_, err := peer.Next(context.Background())
	req.Error(err)
	req.True(errs.HasCode(err, errs.ErrBadOpcode))

	_, err = peer.Next(context.Background())
	req.ErrorIs(err, io.EOF)
}

func TestPeer_NextHonorsContext(t *testing.T) {
	peer, _, _ := newTestPeer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := peer.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPeer_SendCommand(t *testing.T) {
	req := require.New(t)
	peer, clientConn, _ := newTestPeer(t)

	got := make(chan protocol.Command, 1)
	go func() {
		got <- readFrame(t, clientConn)
	}()

	n, err := peer.SendCommand(protocol.Ok{})
	req.NoError(err)
	req.Equal(protocol.FrameSize, n)
	req.Equal(protocol.Ok{}, <-got)
}

func TestPeer_ReadCommand(t *testing.T) {
	req := require.New(t)
	peer, clientConn, _ := newTestPeer(t)

	go writeFrame(t, clientConn, protocol.Usr{Name: "alice", Password: "wonderland"})

	cmd, err := peer.ReadCommand()
	req.NoError(err)
	req.Equal(protocol.Usr{Name: "alice", Password: "wonderland"}, cmd)
}

func TestPeer_ReadCommandEOF(t *testing.T) {
	peer, clientConn, _ := newTestPeer(t)

	clientConn.Close()

	_, err := peer.ReadCommand()
	require.ErrorIs(t, err, io.EOF)
}
