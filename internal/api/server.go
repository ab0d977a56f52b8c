package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"mentorchat/internal/config"
	"mentorchat/internal/history"
	"mentorchat/internal/models"
	"mentorchat/internal/rag"

	"github.com/google/uuid"
)

// Server wires the request handlers to the pipeline and history store. It
// is constructed once at startup, after the index has loaded; there is no
// ambient global state.
type Server struct {
	cfg       config.Config
	verifier  *Verifier
	pipeline  *rag.Pipeline
	histories *history.Store
}

func NewServer(cfg config.Config, pipeline *rag.Pipeline, histories *history.Store) *Server {
	return &Server{
		cfg:       cfg,
		verifier:  NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		pipeline:  pipeline,
		histories: histories,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/history/clear", s.handleHistoryClear)
	return withCORS(s.cfg.AllowedOrigins, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "message": "service is running"})
}

// authenticate verifies the bearer token and checks that the token's
// user_id matches the caller-supplied one.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, claimedUser string) bool {
	token, err := bearerToken(r)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, err)
		return false
	}
	authUser, err := s.verifier.Verify(token)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, err)
		return false
	}
	if authUser != claimedUser {
		writeErr(w, http.StatusForbidden, fmt.Errorf("token user_id mismatch"))
		return false
	}
	return true
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req models.ChatRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.RequestBodyLimit)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" || req.Message == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("userId and message are required"))
		return
	}
	if !s.authenticate(w, r, req.UserID) {
		return
	}
	reqID := uuid.NewString()

	stored, err := s.histories.Load(r.Context(), req.UserID)
	if err != nil {
		logRequest(reqID, req.UserID, "history load failed", err)
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	combined := append(stored, req.ChatHistory...)

	answer, err := s.pipeline.Answer(r.Context(), req.Message, combined)
	if err != nil {
		// No history save after a failed generation: the save path would
		// otherwise persist a turn pair with no real answer.
		logRequest(reqID, req.UserID, "pipeline failed", err)
		switch {
		case errors.Is(err, rag.ErrGeneration), errors.Is(err, rag.ErrRetrieval):
			writeErr(w, http.StatusBadGateway, err)
		default:
			writeErr(w, http.StatusInternalServerError, err)
		}
		return
	}

	updated := append(combined,
		models.Turn{Role: models.RoleUser, Content: req.Message},
		models.Turn{Role: models.RoleAssistant, Content: answer},
	)
	if err := s.histories.Save(r.Context(), req.UserID, updated); err != nil {
		logRequest(reqID, req.UserID, "history save failed", err)
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: answer})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}
	if !s.authenticate(w, r, userID) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		turns, err := s.histories.Load(r.Context(), userID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": turns})
	case http.MethodDelete:
		if err := s.histories.Clear(r.Context(), userID); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

// handleHistoryClear keeps the legacy POST route some front ends still call;
// DELETE /history is the preferred form.
func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}
	if !s.authenticate(w, r, userID) {
		return
	}
	if err := s.histories.Clear(r.Context(), userID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps errors to stable public codes. Raw upstream payloads stay
// in the logs and never reach the caller.
func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "MC-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500 && status != http.StatusBadGateway:
		switch {
		case strings.Contains(raw, "history"):
			return apiError{
				Code:    "MC-STORE-5001",
				Message: "Conversation storage is unavailable. Please retry shortly.",
			}
		default:
			return apiError{
				Code:    "MC-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadGateway:
		if strings.Contains(raw, "retrieval") {
			return apiError{
				Code:    "MC-RAG-5021",
				Message: "Context retrieval is unavailable. Please retry shortly.",
			}
		}
		return apiError{
			Code:    "MC-RAG-5020",
			Message: "The answer engine is unavailable. Please retry shortly.",
		}
	case status == http.StatusUnauthorized:
		code = "MC-AUTH-4001"
		msg = "Authorization header missing or token invalid."
	case status == http.StatusForbidden:
		code = "MC-AUTH-4003"
		msg = "Token does not match the requested user."
	case status == http.StatusBadRequest:
		code = "MC-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusMethodNotAllowed:
		code = "MC-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	if status == http.StatusBadRequest && err != nil {
		switch {
		case strings.Contains(raw, "userid and message are required"):
			msg = "Both userId and message are required."
		case strings.Contains(raw, "user_id is required"):
			msg = "Query parameter user_id is required."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func logRequest(reqID, userID, what string, err error) {
	log.Printf("request id=%s user=%s %s: %v", reqID, userID, what, err)
}

func withCORS(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
