package router

import (
	"fmt"
	"sync"

	"github.com/shravanasati/guestserver/request"
	"github.com/shravanasati/guestserver/response"
)

// Handler produces the response for a matched route. body is nil when the
// request declared no content. Handlers run concurrently on many connections.
type Handler func(body []byte) *response.Response

type routeKey struct {
	method request.Method
	path   string
}

// Table maps (method, exact path) to a handler. Lookups run in parallel;
// registrations take the table exclusively.
type Table struct {
	mu     sync.RWMutex
	routes map[routeKey]Handler
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{routes: map[routeKey]Handler{}}
}

// Register binds handler to (method, path), replacing any previous binding.
func (t *Table) Register(method request.Method, path string, handler Handler) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	if handler == nil {
		return fmt.Errorf("%w for %s %s", ErrNilHandler, method, path)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[routeKey{method, path}] = handler
	return nil
}

// Lookup returns the handler bound to (method, path). Paths match exactly.
func (t *Table) Lookup(method request.Method, path string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.routes[routeKey{method, path}]
	return h, ok
}

// Get registers a GET route.
func (t *Table) Get(path string, handler Handler) {
	// GET is always valid
	_ = t.Register(request.GET, path, handler)
}

// Post registers a POST route.
func (t *Table) Post(path string, handler Handler) {
	_ = t.Register(request.POST, path, handler)
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}
