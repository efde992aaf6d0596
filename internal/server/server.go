package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"taxdesk/internal/config"
	"taxdesk/internal/mediator"
	"taxdesk/internal/types"
)

// GenericError is the "error" field of every failed query.
const GenericError = "Failed to generate response"

type Server struct {
	router    *chi.Mux
	cfg       config.Config
	mediator  *mediator.Mediator
	catalogue []string
}

func NewServer(cfg config.Config, m *mediator.Mediator, catalogue []string) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:    r,
		cfg:       cfg,
		mediator:  m,
		catalogue: append([]string{}, catalogue...),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/prompts", s.handlePrompts)
	s.router.Post("/api/query", s.handleQuery)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.PromptsResponse{Prompts: s.catalogue})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req types.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Str("req_id", middleware.GetReqID(r.Context())).Msg("invalid query body")
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res := s.mediator.HandleQuery(r.Context(), req.Prompt)
	if !res.OK() {
		log.Info().
			Str("req_id", middleware.GetReqID(r.Context())).
			Str("kind", string(res.Failure.Kind)).
			Msg("query failed")
		s.writeError(w, http.StatusInternalServerError, res.Failure.Message)
		return
	}
	writeJSON(w, http.StatusOK, types.QueryResponse{Response: res.Text})
}

func (s *Server) writeError(w http.ResponseWriter, code int, details string) {
	writeJSON(w, code, types.ErrorResponse{Error: GenericError, Details: details})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}
