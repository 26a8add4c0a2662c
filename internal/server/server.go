package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hayat-support-backend/internal/config"
	"hayat-support-backend/internal/db"
	"hayat-support-backend/internal/disclaimer"
	"hayat-support-backend/internal/dispatch"
	"hayat-support-backend/internal/domain"
	"hayat-support-backend/internal/intent"
	"hayat-support-backend/internal/persona"
	"hayat-support-backend/internal/provider"
	"hayat-support-backend/internal/responder"
	"hayat-support-backend/internal/store"
	"hayat-support-backend/internal/types"
)

const maxBodyBytes = 64 << 10

type Server struct {
	router   *chi.Mux
	cfg      config.Config
	log      *zap.Logger
	store    *store.Store
	coord    *dispatch.Coordinator
	provider provider.Provider
	// database is nil unless a SQL store is configured
	database *db.DB
}

// NewServer wires persistence, the remote provider and the turn coordinator
// from cfg.
func NewServer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	persist, database, err := openPersistence(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	p, err := provider.New(ctx, cfg, log)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	st := NewStore(persist, log)
	coord := dispatch.New(st, p,
		dispatch.WithHistoryWindow(cfg.HistoryWindow),
		dispatch.WithRemoteTimeout(cfg.RemoteTimeout),
		dispatch.WithLogger(log.Named("dispatch")),
	)
	s := newServer(cfg, log, st, coord, p)
	s.database = database
	return s, nil
}

// NewStore builds a conversation store seeded with the localized greetings.
func NewStore(p store.Persistence, log *zap.Logger) *store.Store {
	return store.New(p, responder.GreetingFor,
		store.WithTitles(responder.DefaultTitle),
		store.WithLogger(log.Named("store")),
	)
}

func newServer(cfg config.Config, log *zap.Logger, st *store.Store, coord *dispatch.Coordinator, p provider.Provider) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", UserIDHeader},
		ExposedHeaders:   []string{UserIDHeader},
		AllowCredentials: true, // Enable credentials for cookies
		MaxAge:           300,
	}))

	s := &Server{
		router:   r,
		cfg:      cfg,
		log:      log,
		store:    st,
		coord:    coord,
		provider: p,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Route("/api/conversations", func(r chi.Router) {
		r.Get("/", s.handleListConversations)
		r.Post("/", s.handleCreateConversation)
		r.Put("/current", s.handleSwitchConversation)
		r.Get("/{id}", s.handleGetConversation)
		r.Delete("/{id}", s.handleDeleteConversation)
	})
	s.router.Post("/api/chat", s.handleChat)
	s.router.Post("/api/classify", s.handleClassify)
	s.router.Post("/api/system-prompt", s.handleSystemPrompt)
}

func (s *Server) Router() http.Handler { return s.router }

// Close releases the database connection, if any.
func (s *Server) Close() error {
	if s.database != nil {
		return s.database.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.database != nil {
		if err := s.database.HealthCheck(r.Context()); err != nil {
			s.log.Error("database health check failed", zap.Error(err))
			s.writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok", Provider: s.provider.Name(), Store: s.cfg.Store})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	key := s.key(w, r, r.URL.Query().Get("mode"))
	ix, err := s.store.EnsureSeeded(r.Context(), key, profileFromQuery(r, key.Mode))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, indexResponse(key.Mode, ix))
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req types.CreateConversationRequest
	if !s.decode(w, r, &req) {
		return
	}
	key := s.key(w, r, req.Mode)
	c, err := s.store.Create(r.Context(), key, req.Title, domain.ParseLanguage(req.Language))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	key := s.key(w, r, r.URL.Query().Get("mode"))
	c, err := s.store.Get(r.Context(), key, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSwitchConversation(w http.ResponseWriter, r *http.Request) {
	var req types.SwitchConversationRequest
	if !s.decode(w, r, &req) {
		return
	}
	key := s.key(w, r, req.Mode)
	ok, err := s.store.SwitchTo(r.Context(), key, req.ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	s.writeJSON(w, http.StatusOK, types.SwitchConversationResponse{CurrentID: req.ID})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	key := s.key(w, r, r.URL.Query().Get("mode"))
	ix, err := s.store.Remove(r.Context(), key, chi.URLParam(r, "id"), profileFromQuery(r, key.Mode))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, indexResponse(key.Mode, ix))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	key := s.key(w, r, req.Mode)
	profile := dispatch.Profile{
		UserName: req.UserName,
		UserType: domain.ParseUserType(req.UserType),
		Language: domain.ParseLanguage(req.Language),
	}

	// A first message may arrive before the caller ever listed conversations.
	if req.ConversationID == "" {
		cctx := domain.ChatbotContext{UserName: profile.UserName, UserType: profile.UserType, Language: profile.Language, Mode: key.Mode}
		if _, err := s.store.EnsureSeeded(r.Context(), key, cctx); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}

	res, err := s.coord.HandleTurn(r.Context(), dispatch.TurnInput{
		Key:            key,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		Profile:        profile,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, types.ChatResponse{
		ConversationID: res.ConversationID,
		Reply:          res.Text,
		Degraded:       res.Degraded,
		Notice:         res.Notice,
		Intent:         string(res.Intent),
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req types.ClassifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	a := intent.Analyze(req.Message, domain.ParseLanguage(req.Language))
	s.writeJSON(w, http.StatusOK, types.ClassifyResponse{
		Intent:          string(a.Intent),
		Language:        string(a.Language),
		NeedsDisclaimer: disclaimer.NeedsDisclaimer(req.Message),
		Dependents:      a.Cues.Dependents,
		Question:        a.Cues.Question,
	})
}

func (s *Server) handleSystemPrompt(w http.ResponseWriter, r *http.Request) {
	var req types.SystemPromptRequest
	if !s.decode(w, r, &req) {
		return
	}
	system := persona.BuildSystemPrompt(domain.ChatbotContext{
		UserName:    req.UserName,
		UserType:    domain.UserType(req.UserType),
		Language:    domain.Language(req.Language),
		Mode:        domain.Mode(req.Mode),
		CurrentDate: req.CurrentDate,
	})
	s.writeJSON(w, http.StatusOK, types.SystemPromptResponse{System: system})
}

// key resolves the caller identity: the X-User-Id header, then the anonymous
// cookie, otherwise a fresh anonymous id is issued.
func (s *Server) key(w http.ResponseWriter, r *http.Request, mode string) domain.Key {
	return domain.Key{UserID: userID(w, r), Mode: domain.ParseMode(mode)}
}

func userID(w http.ResponseWriter, r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
		return id
	}
	if id, err := GetUserCookie(r); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	SetUserCookie(w, r, id)
	w.Header().Set(UserIDHeader, id)
	return id
}

func profileFromQuery(r *http.Request, mode domain.Mode) domain.ChatbotContext {
	q := r.URL.Query()
	return domain.ChatbotContext{
		UserName: q.Get("userName"),
		UserType: domain.ParseUserType(q.Get("userType")),
		Language: domain.ParseLanguage(q.Get("language")),
		Mode:     mode,
	}
}

func indexResponse(mode domain.Mode, ix domain.Index) types.ConversationsResponse {
	out := types.ConversationsResponse{
		Mode:          string(mode),
		CurrentID:     ix.CurrentID,
		Conversations: make([]types.ConversationSummary, 0, len(ix.Conversations)),
	}
	for _, c := range ix.Conversations {
		sum := types.ConversationSummary{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			MessageCount: len(c.Messages),
		}
		if n := len(c.Messages); n > 0 {
			sum.LastMessage = c.Messages[n-1].Content
		}
		out.Conversations = append(out.Conversations, sum)
	}
	return out
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeDomainError maps engine errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsNotFound(err):
		s.writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		// The client went away; there is nobody to answer.
		s.log.Info("request cancelled", zap.String("path", r.URL.Path))
	default:
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
