package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/middleware"
)

// Result is what a command handler returns: an Envelope or a RouteResult.
type Result interface {
	OK() bool
}

// Handler processes one free-text command. It is a terminal error boundary:
// failures are reported inside the returned value, never as a fault.
type Handler func(ctx context.Context, text string) Result

// Server exposes one agent over HTTP.
type Server struct {
	card   domain.AgentCard
	handle Handler
	logger *slog.Logger
	addr   string

	httpSrv   *http.Server
	boundAddr string
	cancel    context.CancelFunc
}

// NewServer creates a server for the given agent card and handler.
func NewServer(addr string, card domain.AgentCard, handle Handler, logger *slog.Logger) *Server {
	return &Server{
		card:   card,
		handle: handle,
		logger: logger,
		addr:   addr,
	}
}

// Start binds the listener and begins serving in the background. It
// returns once the address is bound; the server runs until Stop or
// context cancellation.
func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/tasks/send", s.handleTask)
	mux.HandleFunc("/.well-known/agent.json", s.handleCard)
	mux.HandleFunc("/api/v1/health", s.handleHealth)

	secureHandler := middleware.SecurityHeaders(
		middleware.RateLimit(ctx, 300, 50)(mux),
	)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("agent listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()

	s.httpSrv = &http.Server{
		Handler:           secureHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.logger.Info("agent server started", "agent", s.card.Name, "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("agent serve failed", "agent", s.card.Name, "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpSrv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// BoundAddr returns the actual listen address. Only valid after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest,
			domain.ErrorEnvelope(domain.ActionParseCommand, "invalid JSON: %v", err))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest,
			domain.ErrorEnvelope(domain.ActionParseCommand, "command text is required"))
		return
	}

	s.logger.Debug("ask received", "agent", s.card.Name, "command", req.Text)
	writeJSON(w, http.StatusOK, s.handle(r.Context(), req.Text))
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var task domain.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, `{"error":"invalid task JSON"}`, http.StatusBadRequest)
		return
	}
	if task.ID == "" {
		task.ID = ulid.Make().String()
	}

	text := task.Text()
	if text == "" {
		task.Status = domain.TaskStatus{
			State:   domain.TaskStateInputRequired,
			Message: domain.AgentMessage("Please provide a command."),
		}
		writeJSON(w, http.StatusOK, task)
		return
	}

	s.logger.Debug("task received", "agent", s.card.Name, "task_id", task.ID, "command", text)
	result := s.handle(r.Context(), text)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		task.Status = domain.TaskStatus{
			State:   domain.TaskStateFailed,
			Message: domain.AgentMessage("internal error encoding result"),
		}
		writeJSON(w, http.StatusOK, task)
		return
	}

	task.Artifacts = []domain.Artifact{
		{Parts: []domain.Part{{Type: "text", Text: string(encoded)}}},
	}
	if result.OK() {
		task.Status = domain.TaskStatus{State: domain.TaskStateCompleted}
	} else {
		task.Status = domain.TaskStatus{
			State:   domain.TaskStateFailed,
			Message: domain.AgentMessage(resultMessage(result)),
		}
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.card)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func resultMessage(result Result) string {
	switch r := result.(type) {
	case domain.Envelope:
		return r.Message
	case domain.RouteResult:
		return r.Message
	default:
		return "command failed"
	}
}
