package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

const (
	singleFileField = "file"
	serviceName     = "api"
)

// batch clients send either "files[]" or "files".
var batchFileFields = []string{"files[]", "files"}

type Router struct {
	cfg     config.Config
	service ports.DocumentClassificationService
	metrics *metrics.HTTPServerMetrics
}

// NewRouter wires the classification service to HTTP. httpMetrics may be nil.
func NewRouter(
	cfg config.Config,
	service ports.DocumentClassificationService,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:     cfg,
		service: service,
		metrics: httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /classify_file", rt.classifyFile)
	mux.HandleFunc("POST /classify_files", rt.classifyFiles)
	mux.HandleFunc("GET /v1/categories", rt.categories)

	var handler http.Handler = mux
	if rt.metrics != nil {
		if rt.cfg.MetricsEnabled {
			mux.Handle("GET /metrics", rt.metrics.Handler())
		}
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIOverloadWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) classifyFile(w http.ResponseWriter, r *http.Request) {
	form, err := parseUploadForm(w, r, rt.cfg.MaxUploadBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.close()

	upload, ok := form.first(singleFileField)
	if !ok {
		writeError(w, r, errNoFile)
		return
	}

	doc, err := rt.service.ClassifyFile(r.Context(), upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) classifyFiles(w http.ResponseWriter, r *http.Request) {
	uploads, err := readBatchUploads(w, r, rt.cfg.MaxUploadBytes, batchFileFields...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(uploads) == 0 {
		writeError(w, r, errNoFile)
		return
	}

	result := rt.service.ClassifyBatch(r.Context(), uploads)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.service.Categories())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError logs the cause and replies with the public message for its kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	attrs := []any{"request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed", attrs...)
	} else {
		slog.Warn("request_rejected", attrs...)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
