package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/neuranotes/neuranotes/internal/ai"
	"github.com/neuranotes/neuranotes/internal/storage"
)

const apiVersion = "1.0.0"

type Options struct {
	JWTSecret string
	ClientURL string
	UploadDir string
	UploadMax int64
}

type Server struct {
	storage   storage.Storage
	assistant ai.Assistant
	logger    *zap.Logger
	validate  *validator.Validate
	opts      Options
}

func New(store storage.Storage, assistant ai.Assistant, logger *zap.Logger, opts Options) *Server {
	if opts.UploadMax == 0 {
		opts.UploadMax = 5 * 1024 * 1024
	}
	return &Server{
		storage:   store,
		assistant: assistant,
		logger:    logger,
		validate:  validator.New(),
		opts:      opts,
	}
}

// Router wires middleware and every route under /api.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(RequestLogger(s.logger))

	// An empty client URL allows all origins, matching the original
	// deployment behavior for quick testing.
	allowedOrigins := []string{"*"}
	if s.opts.ClientURL != "" {
		allowedOrigins = []string{s.opts.ClientURL}
	} else {
		s.logger.Warn("CLIENT_URL not set, CORS will allow all origins")
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: s.opts.ClientURL != "",
		MaxAge:           300,
	}))

	router.Get("/", s.handleBanner)
	router.Get("/health", s.handleHealth)

	// Uploaded images are served as-is.
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.opts.UploadDir))))

	router.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(s.opts.JWTSecret))

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", s.handleCreateNote)
			r.Get("/", s.handleListNotes)
			r.Get("/tags/all", s.handleAllTags)
			r.Get("/folders/all", s.handleAllFolders)
			r.Get("/{noteID}", s.handleGetNote)
			r.Put("/{noteID}", s.handleUpdateNote)
			r.Delete("/{noteID}", s.handleDeleteNote)
			r.Patch("/{noteID}/toggle-pin", s.handleTogglePin)
			r.Patch("/{noteID}/toggle-archive", s.handleToggleArchive)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/summary/{noteID}", s.handleSummarize)
			r.Post("/expand/{noteID}", s.handleExpand)
			r.Post("/generate-tags/{noteID}", s.handleGenerateTags)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Post("/image", s.handleUploadImage)
			r.Post("/image/base64", s.handleUploadImageBase64)
		})
	})

	return router
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message":   "NeuraNotes API is working",
		"version":   apiVersion,
		"status":    "online",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
