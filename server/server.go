package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shravanasati/guestserver/request"
	"github.com/shravanasati/guestserver/response"
	"github.com/shravanasati/guestserver/router"
)

// ErrServerClosed is returned by Serve and ListenAndServe after Close.
var ErrServerClosed = errors.New("server closed")

const maxAcceptDelay = time.Second

// Server answers one request per connection using its route table.
type Server struct {
	opts   ServerOpts
	routes Routes

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
}

// New creates a server with an empty route table.
func New(opts ServerOpts) *Server {
	return NewWithRoutes(opts, router.NewTable())
}

// NewWithRoutes creates a server that dispatches against routes.
func NewWithRoutes(opts ServerOpts, routes Routes) *Server {
	return &Server{
		opts:   opts.withDefaults(),
		routes: routes,
	}
}

// Route registers handler for (method, path). Safe to call while serving.
func (s *Server) Route(method request.Method, path string, handler router.Handler) error {
	return s.routes.Register(method, path, handler)
}

// Get registers a GET route.
func (s *Server) Get(path string, handler router.Handler) {
	_ = s.routes.Register(request.GET, path, handler)
}

// Post registers a POST route.
func (s *Server) Post(path string, handler router.Handler) {
	_ = s.routes.Register(request.POST, path, handler)
}

// Addr returns the listening address, or nil before the server is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds addr and serves on it; see ListenAndServe.
func (s *Server) Listen(addr string) error {
	l, err := net.Listen("tcp", NormalizeAddress(addr))
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(l)
}

// ListenAndServe binds the configured address and runs the accept loop. A bind
// failure is returned right away; otherwise it blocks until Close.
func (s *Server) ListenAndServe() error {
	return s.Listen(s.opts.Address)
}

// Serve accepts connections on l and handles each in its own goroutine.
// Accept errors are logged and do not stop the loop.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	if s.closed.Load() {
		l.Close()
		return ErrServerClosed
	}

	var delay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			s.opts.ErrorLog.Printf("unable to accept connection: %v; retrying in %v", err, delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		go s.handle(conn)
	}
}

// Close stops the accept loop. Connections already accepted run to completion.
func (s *Server) Close() error {
	s.closed.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			s.opts.ErrorLog.Println("unable to close connection:", err)
		}
	}()

	if s.opts.ReadTimeout != 0 {
		conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	}
	if s.opts.WriteTimeout != 0 {
		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}

	if err := s.serveConn(conn); err != nil {
		s.opts.ErrorLog.Printf("connection %s: %v", conn.RemoteAddr(), err)
	}
}

// serveConn runs one request/response cycle on rw. It returns the error that
// ended the cycle early, if any.
//
// A malformed header block is answered with 400. A body cut short or any other
// read error gets no response at all.
func (s *Server) serveConn(rw io.ReadWriter) error {
	start := time.Now()

	req, err := request.RequestFromReader(rw)
	if errors.Is(err, request.ErrMalformedRequest) {
		if werr := response.Empty(response.StatusBadRequest).Write(rw); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	if err != nil {
		return err
	}

	resp := s.dispatch(req)
	if err := resp.Write(rw); err != nil {
		return fmt.Errorf("unable to write response: %w", err)
	}

	if s.opts.AccessLog != nil {
		s.opts.AccessLog(req, resp, time.Since(start))
	}
	return nil
}

func (s *Server) dispatch(req *request.Request) (resp *response.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = s.opts.Recovery(r)
			if resp == nil {
				resp = response.Empty(response.StatusInternalServerError)
			}
		}
	}()
	return router.Dispatch(s.routes, req.Method, req.Target, req.Body)
}
