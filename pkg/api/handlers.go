package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/klazomenai/netbash/pkg/assets"
	"github.com/klazomenai/netbash/pkg/command"
	"github.com/klazomenai/netbash/pkg/config"
	"github.com/klazomenai/netbash/pkg/netbash"
	"github.com/klazomenai/netbash/pkg/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the host HTTP server
type Server struct {
	settings *config.Settings
	table    *routes.Table
	cache    *assets.Cache
	handler  *netbash.Handler
	index    *template.Template
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	CachedAssets int    `json:"cached_assets"`
}

// NewServer creates the host server. General-purpose routes are added first;
// the NetBash routes are then registered ahead of them.
func NewServer(settings *config.Settings, cache *assets.Cache, processor command.Processor, templates fs.FS) (*Server, error) {
	index, err := template.New("index.html").
		Funcs(netbash.TemplateFuncs(settings.RouteBasePath, settings.Version)).
		ParseFS(templates, "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		settings: settings,
		table:    routes.NewTable(),
		cache:    cache,
		handler:  netbash.NewHandler(cache, processor),
		index:    index,
	}
	s.table.OnError(s.handleError)

	// Setup routes
	s.table.Update(func(tx *routes.Tx) {
		tx.Add(&routes.Route{Name: "health", Path: "/health", Methods: []string{"GET"}, Handler: routes.Std(http.HandlerFunc(s.Health))})
		tx.Add(&routes.Route{Name: "healthz", Path: "/healthz", Methods: []string{"GET"}, Handler: routes.Std(http.HandlerFunc(s.Health))})
		tx.Add(&routes.Route{Name: "metrics", Path: "/metrics", Methods: []string{"GET"}, Handler: routes.Std(promhttp.Handler())})
		tx.Add(&routes.Route{Name: "index", Path: "/", Prefix: true, Handler: routes.HandlerFunc(s.Index)})
	})

	netbash.RegisterRoutes(s.table, s.handler, settings.RouteBasePath)

	return s, nil
}

// Index renders the landing page at / and answers 404 for anything else
// that reaches the catch-all route
func (s *Server) Index(w http.ResponseWriter, r *http.Request) error {
	if r.URL.Path != "/" {
		s.sendError(w, http.StatusNotFound, "Not found", r.URL.Path)
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.index.Execute(w, s.settings)
}

// Health handles health check requests
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "healthy",
		Version:      s.settings.Version,
		CachedAssets: s.cache.Len(),
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// Router returns the HTTP handler for the whole server
func (s *Server) Router() http.Handler {
	return s.table
}

// Routes exposes the route table
func (s *Server) Routes() *routes.Table {
	return s.table
}

// handleError is the generic error handler for routes that fail
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("Error serving %s %s: %v", r.Method, r.URL.Path, err)
	s.sendError(w, http.StatusInternalServerError, "Internal server error", err.Error())
}

// Helper methods
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) sendError(w http.ResponseWriter, status int, error, message string) {
	resp := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.sendJSON(w, status, resp)
}
