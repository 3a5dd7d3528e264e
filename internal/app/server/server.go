/*
Package server binds the chat TCP listener and runs one session per accepted connection.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"chirpd/internal/app/directory"
	"chirpd/internal/app/registry"
	"chirpd/internal/app/session"
	"chirpd/internal/configs"
	"chirpd/internal/pkg/limiter"
	"chirpd/internal/pkg/logx"
	"chirpd/internal/pkg/metrics"
)

// Server owns the chat listener. Each accepted connection runs its session in
// its own goroutine, so a single connection's failure never reaches the accept
// loop or other sessions.
type Server struct {
	cfg      *configs.AppConfig
	registry *registry.Registry
	dir      *directory.Directory
	limiter  *limiter.IPRateLimiter
	logger   zerolog.Logger
}

// New wires the shared registry and user directory into a Server.
func New(cfg *configs.AppConfig, reg *registry.Registry, dir *directory.Directory) *Server {
	return &Server{
		cfg:      cfg,
		registry: reg,
		dir:      dir,
		limiter:  limiter.NewIPRateLimiter(rate.Limit(cfg.Limits.AcceptRate), cfg.Limits.AcceptBurst),
		logger:   logx.Logger().With().Str("component", "server").Logger(),
	}
}

// ListenAndServe binds the configured address and accepts connections until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.ListenAddr()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind chat listener on %s: %w", addr, err)
	}

	s.logger.Info().Str("addr", addr).Msg("Chat server listening")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info().Msg("Chat listener closed")
				return nil
			}
			s.logger.Error().Err(err).Msg("Accept failed")
			continue
		}

		remote := conn.RemoteAddr().String()
		if !s.limiter.AllowAddr(remote) {
			s.logger.Warn().Str("remote_addr", remote).Msg("Connection rejected: rate limit exceeded")
			metrics.ConnectionsRejected.WithLabelValues("rate_limit").Inc()
			conn.Close()
			continue
		}

		go s.handleConn(ctx, conn)
	}
}

// handleConn runs one connection's session to completion.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.logger.Debug().Str("remote_addr", remote).Msg("New connection")

	metrics.ConnectionsTotal.WithLabelValues("tcp").Inc()
	metrics.ConnectionsCurrent.WithLabelValues("tcp").Inc()
	defer metrics.ConnectionsCurrent.WithLabelValues("tcp").Dec()

	sess := session.New(session.NewNetFrameConn(conn), s.registry, s.dir, s.cfg.Limits.MailboxCapacity)
	if err := sess.Run(ctx); err != nil {
		s.logger.Debug().Err(err).Str("remote_addr", remote).Msg("Session ended with login failure")
	}
}
