package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/zero-day-ai/graphqa/internal/conversation"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// Error codes produced by the HTTP layer itself.
const (
	ErrCodeBadRequest types.ErrorCode = "BAD_REQUEST"
	ErrCodeInternal   types.ErrorCode = "INTERNAL"
)

type askRequest struct {
	Question string `json:"question"`
	Strategy string `json:"strategy,omitempty"`
}

type askResponse struct {
	conversation.Exchange
	Strategy string     `json:"strategy"`
	Attempts int        `json:"attempts"`
	Error    *errorBody `json:"error,omitempty"`
}

type historyResponse struct {
	SessionID   string                  `json:"session_id"`
	Exchanges   []conversation.Exchange `json:"exchanges"`
	LatestQuery string                  `json:"latest_query"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// capture keeps the last pipeline result so the handler can report attempts
// after Chat has consumed it.
type capture struct {
	Runner
	result *pipeline.Result
	err    error
}

func (c *capture) Run(ctx context.Context, lines []string) (*pipeline.Result, error) {
	c.result, c.err = c.Runner.Run(ctx, lines)
	return c.result, c.err
}

func (c *capture) attempts() int {
	if c.result != nil {
		return c.result.Attempts
	}
	if f, ok := pipeline.AsFailure(c.err); ok {
		return f.Attempts
	}
	return 0
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, _, err := s.cfg.Store.Create(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordSessionCreated()
	}
	s.logger.InfoContext(r.Context(), "session created", "session_id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(ErrCodeBadRequest), "invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, string(pipeline.ErrCodeInvalidInput), "question cannot be empty")
		return
	}

	runner, err := s.cfg.Resolver.Resolve(req.Strategy)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.cfg.Store.Get(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	run := &capture{Runner: runner}
	ex, askErr := conversation.NewChat(state, run, s.logger.With("session_id", id)).Ask(r.Context(), req.Question)

	// The fallback turn is part of the history too, so save it even when
	// the client has gone away.
	if err := s.cfg.Store.Save(context.WithoutCancel(r.Context()), id, state); err != nil {
		s.writeErr(w, r, err)
		return
	}

	resp := askResponse{Exchange: ex, Strategy: runner.Strategy(), Attempts: run.attempts()}
	if askErr != nil {
		status, body := classify(askErr)
		resp.Error = &body
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	last := 0
	if v := r.URL.Query().Get("last"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, string(ErrCodeBadRequest), "last must be a non-negative integer")
			return
		}
		last = n
	}

	state, err := s.cfg.Store.Get(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	exchanges := state.Exchanges()
	if last > 0 {
		exchanges = state.Recent(last)
	}
	writeJSON(w, http.StatusOK, historyResponse{
		SessionID:   id,
		Exchanges:   exchanges,
		LatestQuery: state.LatestQuery(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.cfg.Store.Delete(r.Context(), id); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.locks.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": types.Healthy("")})
		return
	}

	overall, components := s.cfg.Health.Overall(r.Context())
	status := http.StatusOK
	if overall.State == types.HealthStateUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status":     overall,
		"components": components,
	})
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "error", err)
	}
	writeJSON(w, status, map[string]errorBody{"error": body})
}

// classify maps error codes to HTTP statuses.
func classify(err error) (int, errorBody) {
	code := types.CodeOf(err)
	body := errorBody{Code: string(code), Message: err.Error()}

	var te *types.Error
	if errors.As(err, &te) {
		body.Message = te.Message
	}

	if f, ok := pipeline.AsFailure(err); ok {
		body.Code = string(pipeline.ErrCodePipelineFailed)
		if f.Cause != nil {
			body.Message = f.Cause.Error()
		}
		return http.StatusBadGateway, body
	}

	switch {
	case types.HasCode(err, conversation.ErrCodeSessionNotFound):
		return http.StatusNotFound, body
	case types.HasCode(err, pipeline.ErrCodeInvalidConfig), types.HasCode(err, pipeline.ErrCodeInvalidInput):
		return http.StatusBadRequest, body
	case types.HasCode(err, conversation.ErrCodeSessionStoreFailed):
		return http.StatusServiceUnavailable, body
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Code: "TIMEOUT", Message: err.Error()}
	}

	if body.Code == "" {
		body.Code = string(ErrCodeInternal)
	}
	return http.StatusInternalServerError, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
