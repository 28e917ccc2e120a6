// Package httpapi exposes the store and embedder over the REST surface:
// library, document, and chunk CRUD plus vector and text search, routed
// with chi and translated to and from JSON DTOs kept separate from the
// domain types in internal/vecdb.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Aman-CERP/vectorflow/internal/config"
	"github.com/Aman-CERP/vectorflow/internal/embed"
	"github.com/Aman-CERP/vectorflow/internal/vecdb"
)

// Server wires the HTTP router to the store and embedder.
type Server struct {
	router        chi.Router
	store         *vecdb.Store
	embedder      embed.Embedder
	logger        *slog.Logger
	indexDefaults config.IndexDefaults
}

// New builds a Server with the given dependencies and a fully wired router.
// indexDefaults supplies the algorithm and per-algorithm tunables a build
// falls back to when a request names no override.
func New(store *vecdb.Store, embedder embed.Embedder, logger *slog.Logger, indexDefaults config.IndexDefaults) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{store: store, embedder: embedder, logger: logger, indexDefaults: indexDefaults}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/libraries", func(r chi.Router) {
		r.Get("/", s.handleListLibraries)
		r.Post("/", s.handleCreateLibrary)

		r.Route("/{libraryID}", func(r chi.Router) {
			r.Get("/", s.handleGetLibrary)
			r.Delete("/", s.handleDeleteLibrary)

			r.Post("/index", s.handleBuildIndex)
			r.Get("/index", s.handleIndexStatus)

			r.Post("/search", s.handleVectorSearch)
			r.Post("/text-search", s.handleTextSearch)

			r.Get("/documents", s.handleListDocuments)
			r.Post("/documents", s.handleCreateDocument)
			r.Delete("/documents/{documentID}", s.handleDeleteDocument)

			r.Post("/documents/{documentID}/chunks", s.handleCreateChunk)
			r.Get("/documents/{documentID}/chunks", s.handleListChunks)
			r.Delete("/documents/{documentID}/chunks/{chunkID}", s.handleDeleteChunk)

			r.Post("/batch-chunks", s.handleBatchChunks)
		})
	})

	s.router = r
	return s
}

// ServeHTTP satisfies http.Handler so Server can be passed straight to
// http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
