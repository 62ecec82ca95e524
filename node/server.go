package node

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fzft/go-resp/log"
	"github.com/fzft/go-resp/resp"
)

const ProtoIOLen = 1024 * 16

var ErrServerClosed = errors.New("node: server closed")

type Options struct {
	Addr      string
	ReusePort bool
	// ReadChunk is the number of bytes requested per socket read.
	ReadChunk int
	// Limits defaults to resp.DefaultLimits when left zero. Use Unlimited to
	// decode without any bound.
	Limits    resp.Limits
	Unlimited bool
	Handler   Handler
	// Metrics may be nil.
	Metrics *Metrics
}

// Server accepts RESP connections and answers every decoded frame through its
// Handler.
type Server struct {
	opts    Options
	dec     *resp.Decoder
	handler Handler
	metrics *Metrics
	logger  *zap.Logger

	mu     sync.Mutex
	ln     net.Listener
	conns  map[*Conn]struct{}
	closed bool
}

func NewServer(opts Options) *Server {
	if opts.ReadChunk <= 0 {
		opts.ReadChunk = ProtoIOLen
	}
	if opts.Limits == (resp.Limits{}) && !opts.Unlimited {
		opts.Limits = resp.DefaultLimits()
	}
	handler := opts.Handler
	if handler == nil {
		handler = EchoHandler{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Server{
		opts:    opts,
		dec:     resp.NewDecoder(opts.Limits),
		handler: handler,
		metrics: metrics,
		logger:  log.Named("node"),
		conns:   make(map[*Conn]struct{}),
	}
}

// Listen binds the listening socket. Addr is valid afterwards.
func (s *Server) Listen(ctx context.Context) error {
	lc := net.ListenConfig{Control: listenControl(s.opts.ReusePort)}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		s.logger.Error("listen error", zap.String("addr", s.opts.Addr), zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return multierr.Append(ErrServerClosed, ln.Close())
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run listens and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve accepts connections on the socket bound by Listen. Cancelling ctx
// closes the listener and every open connection, then waits for the
// connection goroutines to return.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("node: Serve called before Listen")
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return s.Close()
	})
	g.Go(func() error {
		// stops the watcher above when the listener fails or Close is called
		defer cancel()
		s.logger.Info("listening", zap.Stringer("addr", ln.Addr()))
		for {
			nc, err := ln.Accept()
			if err != nil {
				if s.isClosed() {
					return nil
				}
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					continue
				}
				s.logger.Error("accept error", zap.Error(err))
				return err
			}

			c := newConn(nc, s.dec, s.opts.ReadChunk, s.metrics.BytesRead)
			if !s.track(c) {
				_ = nc.Close()
				return nil
			}
			g.Go(func() error {
				defer s.untrack(c)
				s.serveConn(ctx, c)
				return nil
			})
		}
	})

	err := g.Wait()
	s.logger.Info("shutting down server")
	return err
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	logger := s.logger.With(zap.Stringer("conn", c.ID()), zap.Stringer("remote", c.RemoteAddr()))
	logger.Debug("accepted connection")
	defer logger.Debug("closed connection")

	for {
		req, err := c.ReadFrame()
		if err != nil {
			switch {
			case resp.IsProtocolError(err):
				s.metrics.ProtocolErrors.Inc()
				logger.Warn("protocol error", zap.Error(err))
				c.Queue(protocolErrorReply(err))
				if err := c.flush(); err != nil && !s.isClosed() {
					logger.Debug("write error", zap.Error(err))
				}
			case isClosedError(err), s.isClosed():
			default:
				logger.Debug("read error", zap.Error(err))
			}
			return
		}
		s.metrics.FramesDecoded.Inc()

		reply, err := s.handler.Handle(ctx, c, req)
		if err != nil {
			logger.Warn("handler error", zap.Error(err))
			return
		}
		c.Queue(reply)
		if err := c.Flush(); err != nil {
			if !s.isClosed() {
				logger.Debug("write error", zap.Error(err))
			}
			return
		}
	}
}

func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	s.metrics.Connections.Inc()
	s.metrics.ActiveConnections.Inc()
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	_, ok := s.conns[c]
	delete(s.conns, c)
	s.mu.Unlock()

	s.metrics.ActiveConnections.Dec()
	if ok {
		_ = c.Close()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops accepting and closes every open connection. It is safe to call
// more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.ln != nil {
		err = multierr.Append(err, s.ln.Close())
	}
	for c := range s.conns {
		err = multierr.Append(err, c.Close())
		delete(s.conns, c)
	}
	return err
}
