/*
Package session owns one client connection: its transport, its mailbox, and the
state machine that drives the connection from login to teardown.

This file defines the Session, which sequences authentication, the active
command loop, and best-effort teardown for one connection.
*/
package session

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chirpd/internal/app/directory"
	"chirpd/internal/app/protocol"
	"chirpd/internal/app/registry"
	"chirpd/internal/pkg/errs"
	"chirpd/internal/pkg/logx"
	"chirpd/internal/pkg/metrics"
)

// Session drives one connection through its lifecycle:
// Connecting -> Authenticating -> Active -> Terminating.
type Session struct {
	peer     *Peer
	mailbox  *registry.Mailbox
	registry *registry.Registry
	dir      *directory.Directory
	username string
	logger   zerolog.Logger
}

// New constructs a session for an accepted connection: it creates the mailbox,
// wraps the transport in a Peer, and tags the session logger with a fresh
// connection id.
func New(conn FrameConn, reg *registry.Registry, dir *directory.Directory, mailboxCapacity int) *Session {
	mailbox := registry.NewMailbox(mailboxCapacity)

	sessionLogger := logx.Logger().With().
		Str("component", "session").
		Str("conn_id", uuid.NewString()).
		Logger()

	return &Session{
		peer:     NewPeer(conn, mailbox),
		mailbox:  mailbox,
		registry: reg,
		dir:      dir,
		logger:   sessionLogger,
	}
}

// Run executes the session to completion. It returns an error only for login
// failures worth surfacing to the accept loop; a session that reached the
// active state always ends with a nil error after teardown.
func (s *Session) Run(ctx context.Context) error {
	defer s.peer.Close()

	if err := s.authenticate(); err != nil {
		return err
	}
	if s.username == "" {
		// Connection went away before completing login; nothing to clean up.
		return nil
	}

	s.logger = s.logger.With().Str("user", s.username).Logger()
	s.logger.Debug().Msg("User logged in")

	s.activeLoop(ctx)
	s.teardown()
	return nil
}

// authenticate performs the single blocking login exchange. End-of-stream or a
// transport error terminates silently; an auth or duplicate-login failure sends
// exactly one Err frame before terminating. On success the session sends Ok and
// holds a presence entry under its username.
func (s *Session) authenticate() error {
	command, err := s.peer.ReadCommand()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Debug().Err(err).Msg("Connection lost during login")
		}
		return nil
	}

	name, err := s.dir.CheckCredentials(command)
	if err != nil {
		metrics.AuthenticationAttempts.WithLabelValues("denied").Inc()
		s.logger.Debug().Err(err).Msg("Login rejected")
		s.sendErr(err)
		return err
	}

	// A group-prefixed username would make every Msg it sends to that group
	// carry sender==target and bypass the membership check.
	if protocol.IsGroupName(name) {
		metrics.AuthenticationAttempts.WithLabelValues("denied").Inc()
		reservedErr := errs.NewError(errs.ErrReservedName, name)
		s.logger.Debug().Str("user", name).Msg("Login rejected: reserved name")
		s.sendErr(reservedErr)
		return reservedErr
	}

	if err := s.registry.Add(name, s.mailbox); err != nil {
		metrics.AuthenticationAttempts.WithLabelValues("duplicate").Inc()
		s.logger.Debug().Str("user", name).Err(err).Msg("Duplicate login attempt")
		s.sendErr(err)
		return err
	}

	if _, err := s.peer.SendCommand(protocol.Ok{}); err != nil {
		// The client is gone already; release the presence entry it just took.
		if rmErr := s.registry.Remove(name); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("user", name).Msg("Failed to release presence entry")
		}
		return nil
	}

	metrics.AuthenticationAttempts.WithLabelValues("ok").Inc()
	s.username = name
	return nil
}

// activeLoop pulls merged events until the stream ends. Protocol-level failures
// caused by the client's own commands are answered with Err frames and never
// end the session; transport failures end the stream on the following pull.
func (s *Session) activeLoop(ctx context.Context) {
	for {
		event, err := s.peer.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Debug().Err(err).Msg("Event stream error")
			continue
		}

		switch event.Kind {
		case EventReceived:
			// Another session routed this command to us; forward it out.
			if _, err := s.peer.SendCommand(event.Cmd); err != nil {
				s.logger.Debug().Err(err).Msg("Error forwarding message to client")
			}

		case EventToSend:
			s.dispatch(event.Cmd)
		}
	}
}

// dispatch acts on one command transmitted by the client.
func (s *Session) dispatch(command protocol.Command) {
	switch cmd := command.(type) {
	case protocol.Msg:
		// Route under the authenticated identity, not the sender field the
		// client supplied.
		cmd.Sender = s.username
		if err := s.registry.Send(cmd); err != nil {
			s.logger.Debug().Err(err).Str("target", cmd.Target).Msg("Unable to route message")
			s.sendErr(err)
		}

	case protocol.Join:
		s.handleJoin(cmd.Name)

	case protocol.Leave:
		if !protocol.IsGroupName(cmd.Name) {
			return
		}
		if err := s.registry.LeaveGroup(s.username, cmd.Name); err != nil {
			s.logger.Warn().Err(err).Str("group", cmd.Name).Msg("Could not leave group")
			return
		}
		s.dropJoinedGroup(cmd.Name)
		s.logger.Debug().Str("group", cmd.Name).Msg("User left group")

	case protocol.ListUsr:
		s.handleList(cmd.Group)

	default:
		// Ok, Err, and Usr have no meaning while active.
		s.logger.Debug().Msg("Invalid command received while active")
		if _, err := s.peer.SendCommand(protocol.Err{Message: "Unable to send non MSG command"}); err != nil {
			s.logger.Debug().Err(err).Msg("Cannot send Err command to user")
		}
	}
}

// handleJoin processes a Join command. Group names join or create the group;
// direct-user joins are reserved and only logged.
func (s *Session) handleJoin(name string) {
	if !protocol.IsGroupName(name) {
		s.logger.Debug().Str("target", name).Msg("User wants to join a user, not implemented")
		return
	}

	if err := s.registry.JoinGroup(name, s.username); err != nil {
		s.logger.Debug().Err(err).Str("group", name).Msg("Unable to join group")
		s.sendErr(err)
		return
	}

	s.peer.Groups = append(s.peer.Groups, name)
	s.logger.Debug().Str("group", name).Msg("User joined group")
}

// handleList answers a roster request with one ListUsr frame per member.
func (s *Session) handleList(group string) {
	if !protocol.IsGroupName(group) {
		s.logger.Debug().Str("target", group).Msg("User tried to list a non-group chat")
		s.sendErr(errs.NewError(errs.ErrNotAGroupName, group))
		return
	}

	members, err := s.registry.ListGroup(group)
	if err != nil {
		s.logger.Debug().Err(err).Str("group", group).Msg("Cannot list group")
		s.sendErr(err)
		return
	}

	for _, member := range members {
		entry := protocol.ListUsr{Group: group, Op: protocol.ListOpAdd, Username: member}
		if _, err := s.peer.SendCommand(entry); err != nil {
			s.logger.Debug().Err(err).Msg("Cannot send roster entry to user")
			return
		}
	}
}

// dropJoinedGroup forgets a group the session has explicitly left, so teardown
// does not attempt to leave it a second time.
func (s *Session) dropJoinedGroup(name string) {
	if i := slices.Index(s.peer.Groups, name); i >= 0 {
		s.peer.Groups = append(s.peer.Groups[:i], s.peer.Groups[i+1:]...)
	}
}

// teardown removes the session from every joined group and from presence.
// Teardown never fails loudly: the connection is already closing, so individual
// failures are logged and skipped. Running it against an already-cleaned
// registry is harmless.
func (s *Session) teardown() {
	s.logger.Debug().Msg("User logged out")

	for _, group := range s.peer.Groups {
		if err := s.registry.LeaveGroup(s.username, group); err != nil {
			s.logger.Warn().Err(err).Str("group", group).Msg("Could not remove user from group")
		}
	}

	if err := s.registry.Remove(s.username); err != nil {
		s.logger.Debug().Err(err).Msg("Could not remove presence entry")
	}

	s.mailbox.Close()
}

// sendErr converts err into an Err frame and writes it to the client.
func (s *Session) sendErr(err error) {
	var customErr *errs.CustomError
	message := err.Error()
	if errors.As(err, &customErr) {
		message = customErr.Message
	}

	if _, sendErr := s.peer.SendCommand(protocol.Err{Message: message}); sendErr != nil {
		s.logger.Debug().Err(sendErr).Msg("Cannot send Err command to user")
	}
}
