// Package server exposes the listing and detail queries over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/horizon/internal/catalog"
	"github.com/vmunix/horizon/internal/detail"
	"github.com/vmunix/horizon/internal/horizon"
	"github.com/vmunix/horizon/pkg/igdb"
)

const shutdownTimeout = 10 * time.Second

// Orchestrator is the query surface the server exposes.
type Orchestrator interface {
	FetchListing(ctx context.Context, req horizon.ListingRequest) (horizon.Listing, error)
	Search(ctx context.Context, query string, limit int) ([]catalog.Game, error)
	GetDetail(ctx context.Context, name, fallbackName string) detail.Record
}

// Server is the HTTP front end.
type Server struct {
	orch Orchestrator
	log  *slog.Logger

	translateDefault bool
}

// New creates an HTTP server around the orchestrator.
func New(orch Orchestrator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{orch: orch, log: log}
}

// SetTranslateDefault sets whether listings are translated when the
// request does not say.
func (s *Server) SetTranslateDefault(v bool) {
	s.translateDefault = v
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/games", s.listGames)
	mux.HandleFunc("GET /api/games/{name}/detail", s.gameDetail)
	mux.HandleFunc("GET /api/search", s.searchGames)
	mux.HandleFunc("GET /api/health", s.health)
}

// Run serves on addr until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// queryInt extracts an optional integer from the query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryBool extracts an optional boolean from the query string.
func queryBool(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return v
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	req := horizon.ListingRequest{
		Year:      queryInt(r, "year", now.Year()),
		Month:     queryInt(r, "month", int(now.Month())),
		Limit:     queryInt(r, "limit", 50),
		Translate: queryBool(r, "translate", s.translateDefault),
	}

	listing, err := s.orch.FetchListing(r.Context(), req)
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) searchGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	games, err := s.orch.Search(r.Context(), query, queryInt(r, "limit", 20))
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "games": games})
}

func (s *Server) writeCatalogError(w http.ResponseWriter, err error) {
	var verr *horizon.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", verr.Error())
	case errors.Is(err, igdb.ErrAuth):
		writeError(w, http.StatusServiceUnavailable, "AUTH_FAILED", "catalog credentials rejected")
	case errors.Is(err, catalog.ErrUpstream):
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "catalog unavailable")
	default:
		s.log.Error("catalog request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func (s *Server) gameDetail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "missing game name")
		return
	}
	fallback := r.URL.Query().Get("fallback_name")

	// Enrichment never fails; the record carries its own diagnostic.
	rec := s.orch.GetDetail(r.Context(), name, fallback)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Addr joins host and port for ListenAndServe.
func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
