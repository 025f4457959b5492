// Package server 实现本地演示用的 chat 后端，与组件使用同一 POST /chat 协议。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"insurabot/internal/chat"
	"insurabot/internal/logger"
	"insurabot/internal/store"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	maxRequestBytes = 64 << 10
	shutdownTimeout = 10 * time.Second
)

type Options struct {
	Addr      string
	Origins   []string
	Repo      store.Repository
	Responder *Responder
	Log       *logger.LogEntry
}

// Server 持有路由与底层 http.Server。
type Server struct {
	addr      string
	repo      store.Repository
	responder *Responder
	log       *logger.LogEntry
	router    chi.Router
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logger.Named("server")
	}
	s := &Server{
		addr:      opts.Addr,
		repo:      opts.Repo,
		responder: opts.Responder,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(opts.Origins))

	r.Post("/chat", s.handleChat)
	r.Get("/escalations", s.handleEscalations)
	// 开发代理使用 /api 前缀。
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/escalations", s.handleEscalations)
	})
	r.Get("/ready", s.handleReady)

	s.router = r
	return s
}

// Handler 返回根路由，便于测试。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动监听并在 ctx 结束时优雅关闭。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定 listener 上提供服务。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	requestID := requestIDFrom(r)
	JSON(w, http.StatusOK, s.responder.Answer(r.Context(), requestID, req.Message))
}

func (s *Server) handleEscalations(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		Error(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := s.repo.ListEscalations(r.Context(), limit)
	if err != nil {
		s.log.Warnf("list escalations: %v", err)
		Error(w, http.StatusInternalServerError, "failed to list escalations")
		return
	}
	type item struct {
		ID        int64     `json:"id"`
		RequestID string    `json:"requestId"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"createdAt"`
	}
	out := make([]item, 0, len(list))
	for _, e := range list {
		out = append(out, item{ID: e.ID, RequestID: e.RequestID, Message: e.Message, CreatedAt: e.CreatedAt})
	}
	JSON(w, http.StatusOK, out)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		Error(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	if err := s.repo.Ping(r.Context()); err != nil {
		Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logger.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).Round(time.Millisecond).String(),
			"request_id": chiMiddleware.GetReqID(r.Context()),
		}).Info("request served")
	})
}

// requestIDFrom 优先使用客户端的 X-Request-ID。
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := chiMiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

// JSON 写出 JSON 响应。
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error 写出 JSON 错误响应。
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
