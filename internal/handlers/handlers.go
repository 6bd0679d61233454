package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"behavior-backend/internal/analyzer"
	"behavior-backend/internal/apikey"
	"behavior-backend/internal/imaging"
	"behavior-backend/internal/models"
	"behavior-backend/internal/services"
)

// Handler is the analysis gateway: it authenticates requests, decodes
// payloads, invokes the engine and shapes responses. It holds no per-request
// state; the key store is read-only after startup.
type Handler struct {
	keys    *apikey.Store
	engine  analyzer.Engine
	metrics *services.Metrics
	logger  *slog.Logger

	corsOrigin     string
	maxUploadBytes int64

	wsMu      sync.Mutex
	wsClients map[string]*wsClient
}

func New(keys *apikey.Store, engine analyzer.Engine, metrics *services.Metrics, logger *slog.Logger, corsOrigin string, maxUploadMB int) *Handler {
	return &Handler{
		keys:           keys,
		engine:         engine,
		metrics:        metrics,
		logger:         logger,
		corsOrigin:     corsOrigin,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		wsClients:      make(map[string]*wsClient),
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Root)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/api-key/status", h.APIKeyStatus)
	mux.HandleFunc("/metrics", h.Metrics)
	mux.HandleFunc("/analyze/frame", h.AnalyzeFrame)
	mux.HandleFunc("/analyze/base64", h.AnalyzeBase64)
	mux.HandleFunc("/analyze/detailed", h.AnalyzeDetailed)
	mux.HandleFunc("/analyze/ws", h.AnalyzeWS)
	return mux
}

func (h *Handler) enableCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", h.corsOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
	w.Header().Set("Content-Type", "application/json")
}

// authenticate enforces the X-API-Key gate. It runs before any decoding or
// analysis work so unauthenticated traffic costs nothing.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key required. Please provide X-API-Key header.")
		return false
	}
	if !h.keys.Validate(key) {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired API key.")
		return false
	}
	return true
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.enableCORS(w)
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	h.Health(w, r)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	h.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		AnalyzerReady: h.engine != nil && h.engine.Ready(),
		Timestamp:     nowUnix(),
	})
}

// APIKeyStatus reports key configuration without authentication; it exists
// to debug deployments where the environment was not wired up.
func (h *Handler) APIKeyStatus(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	message := "No API keys configured in environment"
	if h.keys.HasAny() {
		message = "API keys are loaded from environment variables"
	}
	_, primarySet := h.keys.Primary()

	h.writeJSON(w, http.StatusOK, models.APIKeyStatusResponse{
		KeysConfigured: h.keys.HasAny(),
		KeyCount:       h.keys.Count(),
		PrimaryKeySet:  primarySet,
		Message:        message,
	})
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_frames":      h.metrics.TotalFrames(),
		"total_errors":      h.metrics.TotalErrors(),
		"avg_latency_ms":    h.metrics.AvgLatencyMs(),
		"ws_connections":    h.metrics.WSConnections(),
		"ws_messages":       h.metrics.WSMessages(),
		"system_uptime_sec": h.metrics.UptimeSeconds(),
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}

// AnalyzeFrame handles a multipart upload carrying one image file.
func (h *Handler) AnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}
	if !h.authenticate(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Missing 'file' field in request")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Could not read uploaded file")
		return
	}

	frame, err := imaging.Decode(data)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	h.process(w, r, frame)
}

// AnalyzeBase64 handles a JSON body with a base64 or data-URL image string.
func (h *Handler) AnalyzeBase64(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}
	if !h.authenticate(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	var req models.Base64Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	if req.Image == "" {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Missing 'image' field in request")
		return
	}

	frame, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	h.process(w, r, frame)
}

// AnalyzeDetailed is a static directory of the analysis endpoints.
func (h *Handler) AnalyzeDetailed(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Use /analyze/frame or /analyze/base64 to process frames",
		"endpoints": map[string]string{
			"analyze_frame":  "/analyze/frame - POST with image file",
			"analyze_base64": "/analyze/base64 - POST with base64 image",
			"analyze_ws":     "/analyze/ws - websocket, one frame per message",
			"health":         "/health - GET health check",
		},
	})
}

// process runs the decoded frame through the engine and writes the shaped
// response. Engine failures surface as 500 without internal detail beyond
// the error message itself.
func (h *Handler) process(w http.ResponseWriter, r *http.Request, frame *imaging.Frame) {
	start := time.Now()

	result, err := h.engine.ProcessFrame(r.Context(), frame)
	if err != nil {
		h.metrics.IncrementErrors()
		h.logger.Error("frame processing failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL", fmt.Sprintf("Error processing frame: %s", err))
		return
	}

	h.metrics.RecordLatency(time.Since(start))
	h.metrics.IncrementFrames()

	resp := BuildResponse(result)
	h.logger.Info("frame analyzed",
		"frame", resp.Frame,
		"confidence", resp.FrameConfidence,
		"status", resp.ConfidenceStatus,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, err error) {
	var decodeErr *imaging.DecodeError
	if errors.As(err, &decodeErr) {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", decodeErr.Reason)
		return
	}
	h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, models.ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().Unix(),
	})
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
