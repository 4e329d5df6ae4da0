// Package routes provides an ordered, prioritized route table dispatched
// through a gorilla/mux router.
package routes

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Handler serves a matched route. A returned error is handed to the
// table's error handler.
type Handler interface {
	ServeRoute(w http.ResponseWriter, r *http.Request) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeRoute calls f(w, r).
func (f HandlerFunc) ServeRoute(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Std adapts a plain http.Handler, which never fails.
func Std(h http.Handler) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		h.ServeHTTP(w, r)
		return nil
	})
}

// Route is a single entry in the table
type Route struct {
	Name            string
	Path            string
	Prefix          bool     // match Path as a prefix instead of exactly
	CaseInsensitive bool     // compare Path ignoring letter case
	Methods         []string // empty matches any method
	Handler         Handler
	Defaults        map[string]string
}

// ErrorFunc writes the response for a handler error.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Table holds routes in priority order. Earlier entries win.
type Table struct {
	mu      sync.RWMutex
	routes  []*Route
	router  *mux.Router
	onError ErrorFunc
}

// NewTable creates an empty route table
func NewTable() *Table {
	t := &Table{onError: defaultError}
	t.router = t.build()
	return t
}

// OnError replaces the handler used for errors returned by routes.
func (t *Table) OnError(fn ErrorFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onError = fn
	t.router = t.build()
}

// Tx is a view of the table valid only inside Update.
type Tx struct {
	t *Table
}

// Insert places route at index, shifting later entries down. Out of range
// indexes are clamped.
func (tx *Tx) Insert(index int, route *Route) {
	rs := tx.t.routes
	if index < 0 {
		index = 0
	}
	if index > len(rs) {
		index = len(rs)
	}
	rs = append(rs, nil)
	copy(rs[index+1:], rs[index:])
	rs[index] = route
	tx.t.routes = rs
}

// Add appends route with the lowest priority.
func (tx *Tx) Add(route *Route) {
	tx.t.routes = append(tx.t.routes, route)
}

// Has reports whether a route with the given name exists.
func (tx *Tx) Has(name string) bool {
	for _, r := range tx.t.routes {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Update runs fn while holding the table's write lock and rebuilds the
// router once fn returns, so readers never see a partial change.
func (t *Table) Update(fn func(tx *Tx)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&Tx{t: t})
	t.router = t.build()
}

// Insert places a single route at index.
func (t *Table) Insert(index int, route *Route) {
	t.Update(func(tx *Tx) { tx.Insert(index, route) })
}

// Add appends a single route with the lowest priority.
func (t *Table) Add(route *Route) {
	t.Update(func(tx *Tx) { tx.Add(route) })
}

// Routes returns a snapshot of the table in priority order
func (t *Table) Routes() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		out[i] = *r
	}
	return out
}

// Lookup returns the route that would serve r.
func (t *Table) Lookup(r *http.Request) (*Route, bool) {
	t.mu.RLock()
	router := t.router
	routes := t.routes
	t.mu.RUnlock()

	var match mux.RouteMatch
	if !router.Match(r, &match) || match.Route == nil {
		return nil, false
	}
	for _, route := range routes {
		if route.Name != "" && route.Name == match.Route.GetName() {
			return route, true
		}
	}
	return nil, false
}

// ServeHTTP dispatches to the highest priority matching route
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.mu.RLock()
	router := t.router
	t.mu.RUnlock()

	router.ServeHTTP(w, r)
}

// build must be called with the write lock held.
func (t *Table) build() *mux.Router {
	router := mux.NewRouter()
	onError := t.onError

	for _, route := range t.routes {
		mr := router.NewRoute()
		if route.Name != "" {
			mr = mr.Name(route.Name)
		}
		switch {
		case route.CaseInsensitive:
			mr = mr.MatcherFunc(foldMatcher(route.Path, route.Prefix))
		case route.Prefix:
			mr = mr.PathPrefix(route.Path)
		default:
			mr = mr.Path(route.Path)
		}
		if len(route.Methods) > 0 {
			mr = mr.Methods(route.Methods...)
		}
		mr.Handler(serve(route, onError))
	}

	return router
}

func foldMatcher(p string, prefix bool) mux.MatcherFunc {
	return func(r *http.Request, _ *mux.RouteMatch) bool {
		if prefix {
			return len(r.URL.Path) >= len(p) && strings.EqualFold(r.URL.Path[:len(p)], p)
		}
		return strings.EqualFold(r.URL.Path, p)
	}
}

func serve(route *Route, onError ErrorFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), routeKey{}, route)
		r = r.WithContext(ctx)

		if err := route.Handler.ServeRoute(w, r); err != nil {
			onError(w, r, err)
		}
	})
}

func defaultError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("Error serving %s %s: %v", r.Method, r.URL.Path, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type routeKey struct{}

// Current returns the route serving r, if r was dispatched by a Table.
func Current(r *http.Request) *Route {
	route, _ := r.Context().Value(routeKey{}).(*Route)
	return route
}

// Defaults returns the default parameters of the route serving r.
func Defaults(r *http.Request) map[string]string {
	if route := Current(r); route != nil {
		return route.Defaults
	}
	return nil
}
