package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/version"
)

// ActionDispatcher is the governance core behind the gateway. The
// dispatcher owns policy, confirmation, and auditing; the gateway only
// moves descriptors and results across HTTP.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, desc action.Descriptor) (action.Result, []action.ProgressEvent)
}

type Server struct {
	cfg        config.GatewayConfig
	dispatcher ActionDispatcher
	httpServer *http.Server
}

func New(cfg config.GatewayConfig, dispatcher ActionDispatcher) *Server {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 17871
	}

	cfg.Host = host
	cfg.Port = port
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
	}
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func (s *Server) Start() error {
	mux := NewHandler(s.cfg.Token, s.dispatcher)
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("gateway listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func NewHandler(token string, dispatcher ActionDispatcher) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r)
		if r.Method != http.MethodGet {
			writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"request_id": requestID,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r)
		if r.Method != http.MethodGet {
			writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"version":    version.Version,
			"request_id": requestID,
		})
	})
	mux.HandleFunc("/actions", func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r)
		if r.Method != http.MethodPost {
			writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		if strings.TrimSpace(token) != "" && !isAuthorized(r, token) {
			writeError(w, requestID, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}

		var desc action.Descriptor
		if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
			writeError(w, requestID, http.StatusBadRequest, "bad_request", "invalid json request")
			return
		}
		if strings.TrimSpace(string(desc.Kind)) == "" {
			writeError(w, requestID, http.StatusBadRequest, "bad_request", "kind is required")
			return
		}
		if strings.TrimSpace(desc.ID) == "" {
			desc.ID = requestID
		}

		if dispatcher == nil {
			writeError(w, requestID, http.StatusInternalServerError, "internal_error", "action dispatcher is not configured")
			return
		}

		ctx := action.WithRequestID(r.Context(), requestID)
		result, events := dispatcher.Dispatch(ctx, desc)

		payload := map[string]any{
			"code":    result.Code,
			"message": result.Message,
		}
		if result.Data != nil {
			payload["data"] = result.Data
		}

		resp := map[string]any{
			"id":         desc.ID,
			"ok":         result.Success,
			"request_id": requestID,
		}
		if len(events) > 0 {
			resp["events"] = events
		}
		if result.Success {
			resp["result"] = payload
		} else {
			if result.Err != nil {
				payload["detail"] = result.Err.Error()
			}
			resp["error"] = payload
			slog.Warn("action dispatch failed",
				"request_id", requestID, "kind", desc.Kind, "code", result.Code)
		}
		writeJSON(w, http.StatusOK, resp)
	})
	return mux
}

func isAuthorized(r *http.Request, expected string) bool {
	got := strings.TrimSpace(r.Header.Get("Authorization"))
	if got == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(got, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(got, prefix))
	return token == expected
}

func getRequestID(r *http.Request) string {
	rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if rid != "" {
		return rid
	}
	return uuid.NewString()
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":       code,
		"message":    message,
		"request_id": requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
