package ircd

import (
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
)

type Server struct {
	addr     string
	logger   *slog.Logger
	reg      *Registry
	listener net.Listener
	errCh    chan error
	stopping atomic.Bool
}

func NewServer(addr string, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:   addr,
		logger: logger,
		reg:    NewRegistry(128, opts, logger),
		errCh:  make(chan error, 1),
	}
}

// Start binds the listener and launches the registry and accept loops. A
// bind or listen failure is returned; later fatal failures arrive on Err.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln

	go s.reg.Run()
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String(), "name", s.reg.opts.Name)
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Err delivers a fatal server error; the server cannot go on after one.
func (s *Server) Err() <-chan error {
	return s.errCh
}

func (s *Server) Stop() {
	s.logger.Info("shutting down")
	s.stopping.Store(true)

	if s.listener != nil {
		s.listener.Close()
	}

	s.reg.Stop()
	s.reg.Wait()

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stopping.Load() {
				return
			}
			s.errCh <- fmt.Errorf("accept: %w", err)
			return
		}

		c := NewClient(conn)
		s.logger.Debug("new connection", "conn", c.ID, "addr", conn.RemoteAddr().String())
		go HandleSession(conn, c, s.reg, s.logger)
	}
}
