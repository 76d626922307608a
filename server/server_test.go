package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shravanasati/guestserver/request"
	"github.com/shravanasati/guestserver/response"
	"github.com/shravanasati/guestserver/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn reads a canned request in small pieces and records what is written.
type fakeConn struct {
	in  io.Reader
	out bytes.Buffer
}

type trickleReader struct {
	data string
	step int
}

func (tr *trickleReader) Read(p []byte) (int, error) {
	if tr.data == "" {
		return 0, io.EOF
	}
	n := copy(p, tr.data[:min(tr.step, len(tr.data))])
	tr.data = tr.data[n:]
	return n, nil
}

func newFakeConn(raw string, step int) *fakeConn {
	return &fakeConn{in: &trickleReader{data: raw, step: step}}
}

func (c *fakeConn) Read(p []byte) (int, error) { return c.in.Read(p) }
func (c *fakeConn) Write(p []byte) (int, error) { return c.out.Write(p) }

// countingRoutes flags any lookup, so tests can prove a request never reached
// the table.
type countingRoutes struct {
	*router.Table
	mu      sync.Mutex
	lookups int
}

func (c *countingRoutes) Lookup(method request.Method, path string) (router.Handler, bool) {
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
	return c.Table.Lookup(method, path)
}

func quietOpts() ServerOpts {
	return ServerOpts{ErrorLog: log.New(io.Discard, "", 0)}
}

func newTestServer() (*Server, *countingRoutes) {
	routes := &countingRoutes{Table: router.NewTable()}
	s := NewWithRoutes(quietOpts(), routes)
	s.Get("/", func(body []byte) *response.Response {
		return response.NewText(response.StatusOK, "Hello, world!")
	})
	s.Post("/echo", func(body []byte) *response.Response {
		if body == nil {
			return response.Empty(response.StatusOK)
		}
		return response.New(response.StatusCreated, body)
	})
	s.Get("/panic", func(body []byte) *response.Response {
		panic("boom")
	})
	return s, routes
}

func parseResponse(t *testing.T, raw []byte) (*http.Response, string) {
	t.Helper()
	res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(b)
}

func TestServeConn(t *testing.T) {
	s, _ := newTestServer()
	s.opts.Recovery = func(any) *response.Response {
		return response.NewText(response.StatusInternalServerError, "recovered")
	}

	testCases := []struct {
		name           string
		raw            string
		expectedStatus int
		expectedBody   string
	}{
		{"get root", "GET / HTTP/1.1\r\nHost: x\r\n\r\n", 200, "Hello, world!"},
		{"post echo", "POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\n{\"a\":\"bc\"}", 201, "{\"a\":\"bc\"}"},
		{"repeated content length", "POST /echo HTTP/1.1\r\nContent-Length: 3\r\nContent-Length: 3\r\n\r\nabc", 201, "abc"},
		{"post without body", "POST /echo HTTP/1.1\r\n\r\n", 200, ""},
		{"unregistered path", "GET /missing HTTP/1.1\r\n\r\n", 404, ""},
		{"method mismatch", "POST / HTTP/1.1\r\n\r\n", 404, ""},
		{"trailing slash", "GET /echo/ HTTP/1.1\r\n\r\n", 404, ""},
		{"unsupported method", "PUT / HTTP/1.1\r\n\r\n", 405, ""},
		{"handler panic", "GET /panic HTTP/1.1\r\n\r\n", 500, "recovered"},
		{"malformed request line", "GARBAGE\r\n\r\n", 400, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn := newFakeConn(tc.raw, 1)
			_ = s.serveConn(conn)

			res, body := parseResponse(t, conn.out.Bytes())
			assert.Equal(t, tc.expectedStatus, res.StatusCode)
			assert.Equal(t, tc.expectedBody, body)
		})
	}
}

func TestServeConnJSONContentType(t *testing.T) {
	s, _ := newTestServer()
	conn := newFakeConn("POST /echo HTTP/1.1\r\nContent-Length: 7\r\n\r\n{\"a\":1}", 2)
	require.NoError(t, s.serveConn(conn))

	res, body := parseResponse(t, conn.out.Bytes())
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, "7", res.Header.Get("Content-Length"))
	assert.Equal(t, `{"a":1}`, body)
}

func TestServeConnUnsupportedMethodSkipsLookup(t *testing.T) {
	s, routes := newTestServer()
	for _, m := range []string{"PUT", "DELETE", "HEAD", "get"} {
		conn := newFakeConn(m+" / HTTP/1.1\r\n\r\n", 3)
		require.NoError(t, s.serveConn(conn))
		assert.True(t, strings.HasPrefix(conn.out.String(), "HTTP/1.1 405 "), conn.out.String())
	}
	assert.Equal(t, 0, routes.lookups)
}

func TestServeConnIncompleteBody(t *testing.T) {
	s, routes := newTestServer()
	conn := newFakeConn("POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc", 1)

	err := s.serveConn(conn)
	assert.ErrorIs(t, err, request.ErrIncompleteBody)
	assert.Zero(t, conn.out.Len(), "no response expected")
	assert.Equal(t, 0, routes.lookups)
}

func TestServeConnMalformed(t *testing.T) {
	s, routes := newTestServer()

	// header block never terminated
	conn := newFakeConn("GET / HTTP/1.1\r\nHost: x\r\n", 4)
	err := s.serveConn(conn)
	assert.ErrorIs(t, err, request.ErrMalformedRequest)
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\nContent-Type: text/plain\r\n\r\n", conn.out.String())
	assert.Equal(t, 0, routes.lookups)
}

func TestServeConnAccessLog(t *testing.T) {
	s, _ := newTestServer()
	var gotPath string
	var gotStatus response.StatusCode
	s.opts.AccessLog = func(req *request.Request, resp *response.Response, elapsed time.Duration) {
		gotPath = req.Target
		gotStatus = resp.StatusCode
	}

	require.NoError(t, s.serveConn(newFakeConn("GET /missing HTTP/1.1\r\n\r\n", 8)))
	assert.Equal(t, "/missing", gotPath)
	assert.Equal(t, response.StatusNotFound, gotStatus)

	// malformed and truncated requests are not access logged
	gotPath, gotStatus = "", 0
	require.Error(t, s.serveConn(newFakeConn("GARBAGE\r\n\r\n", 8)))
	require.Error(t, s.serveConn(newFakeConn("POST /echo HTTP/1.1\r\nContent-Length: 4\r\n\r\nab", 8)))
	assert.Equal(t, "", gotPath)
	assert.Equal(t, response.StatusCode(0), gotStatus)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, ":8080", NormalizeAddress("8080"))
	assert.Equal(t, "127.0.0.1:80", NormalizeAddress("127.0.0.1:80"))
	assert.Equal(t, ":9000", NormalizeAddress(":9000"))
	assert.Equal(t, "", NormalizeAddress(""))

	opts := ServerOpts{}.withDefaults()
	assert.Equal(t, defaultAddress, opts.Address)
	assert.NotNil(t, opts.Recovery)
	assert.NotNil(t, opts.ErrorLog)
}

func startServer(t *testing.T, s *Server) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()
	t.Cleanup(func() {
		require.NoError(t, s.Close())
		assert.ErrorIs(t, <-done, ErrServerClosed)
	})
	return l.Addr().String()
}

func roundTrip(t *testing.T, addr, raw string) []byte {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)
	// the server closes the connection after one response
	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	return out
}

func TestServeOverTCP(t *testing.T) {
	s, _ := newTestServer()
	addr := startServer(t, s)

	res, body := parseResponse(t, roundTrip(t, addr, "GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Hello, world!", body)

	// routes registered while serving are picked up
	s.Get("/late", func(body []byte) *response.Response {
		return response.NewText(response.StatusOK, "late")
	})
	_, body = parseResponse(t, roundTrip(t, addr, "GET /late HTTP/1.1\r\n\r\n"))
	assert.Equal(t, "late", body)

	// a truncated body gets no reply
	out := roundTripHalfClose(t, addr, "POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc")
	assert.Empty(t, out)
}

func roundTripHalfClose(t *testing.T, addr, raw string) []byte {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())
	out, _ := io.ReadAll(conn)
	return out
}

func TestServeConcurrentClients(t *testing.T) {
	s, _ := newTestServer()
	addr := startServer(t, s)

	const clients = 32
	var wg sync.WaitGroup
	errs := make(chan error, clients)
	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload := fmt.Sprintf("client-%d", i)
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()
			fmt.Fprintf(conn, "POST /echo HTTP/1.1\r\nContent-Length: %d\r\n\r\n%s", len(payload), payload)
			out, err := io.ReadAll(conn)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.HasSuffix(out, []byte("\r\n\r\n"+payload)) {
				errs <- fmt.Errorf("client %d got %q", i, out)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestStalledClientDoesNotBlockOthers(t *testing.T) {
	s, _ := newTestServer()
	addr := startServer(t, s)

	stalled, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer stalled.Close()
	_, err = io.WriteString(stalled, "POST /echo HTTP/1.1\r\nContent-Length: 100\r\n\r\npartial")
	require.NoError(t, err)

	res, _ := parseResponse(t, roundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

// flakyListener returns an error from the first few Accept calls, then delegates.
type flakyListener struct {
	net.Listener
	mu       sync.Mutex
	failures int
	attempts int
}

func (fl *flakyListener) Accept() (net.Conn, error) {
	fl.mu.Lock()
	fl.attempts++
	fail := fl.attempts <= fl.failures
	fl.mu.Unlock()
	if fail {
		return nil, errors.New("accept: too many open files")
	}
	return fl.Listener.Accept()
}

func TestServeSurvivesAcceptErrors(t *testing.T) {
	var logBuf safeBuffer
	s, _ := newTestServer()
	s.opts.ErrorLog = log.New(&logBuf, "", 0)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	fl := &flakyListener{Listener: l, failures: 3}

	done := make(chan error, 1)
	go func() { done <- s.Serve(fl) }()

	res, body := parseResponse(t, roundTrip(t, l.Addr().String(), "GET / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Hello, world!", body)

	assert.Equal(t, 3, strings.Count(logBuf.String(), "unable to accept connection"))

	require.NoError(t, s.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

// safeBuffer is a bytes.Buffer usable from the accept goroutine and the test.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestListenBindFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s := New(quietOpts())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Listen(l.Addr().String()) }()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listen on")
	case <-time.After(2 * time.Second):
		t.Fatal("bind failure was not reported")
	}
}

func TestCloseBeforeServe(t *testing.T) {
	s := New(quietOpts())
	require.NoError(t, s.Close())
	assert.Nil(t, s.Addr())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Serve(l), ErrServerClosed)
}
