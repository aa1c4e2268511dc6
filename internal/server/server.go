// Package server exposes pipeline evaluation over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/decimath/internal/pipeline"
	"github.com/iwvelando/decimath/pkg/constants"
	"github.com/iwvelando/decimath/pkg/output"
	"github.com/iwvelando/decimath/pkg/scaled"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	evaluator   *pipeline.Evaluator
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler serving the evaluation API. Every
// request runs through evaluator, starting from its configuration unless the
// body overrides it, and within its limits.
func NewHandler(logger *zap.Logger, evaluator *pipeline.Evaluator, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if evaluator == nil {
		evaluator = pipeline.NewEvaluator(logger, scaled.DefaultConfig())
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		evaluator:   evaluator,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Single pipeline, JSON body
	mux.HandleFunc("/api/evaluate", h.handleEvaluate)

	// YAML batch of pipelines, file upload
	mux.HandleFunc("/api/batch", h.handleBatch)

	mux.HandleFunc("/api/operations", h.handleOperations)
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type batchResponse struct {
	Results  []pipeline.Summary `json:"results"`
	CSV      string             `json:"csv"`
	Duration string             `json:"duration"`
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var def pipeline.Definition
	if err := decoder.Decode(&def); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), op)
		return
	}
	if strings.TrimSpace(def.Value) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing value", op)
		return
	}

	result, err := h.evaluator.Evaluate(def)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	summary, err := result.Summarize()
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	h.logger.Info("pipeline evaluated",
		zap.String("op", op),
		zap.Int("steps", len(summary.Steps)),
		zap.String("value", summary.Value),
	)
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(h.maxBodySize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing batch file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read batch: %v", err), op)
		return
	}

	defs, err := pipeline.ReadBatch(&buf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	results, err := h.evaluator.EvaluateAll(defs)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	summaries := make([]pipeline.Summary, 0, len(results))
	for _, result := range results {
		summary, err := result.Summarize()
		if err != nil {
			h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("pipeline %s: %v", result.Name, err), op)
			return
		}
		summaries = append(summaries, summary)
	}

	csv, err := output.CsvString(summaries)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("batch evaluated",
		zap.String("op", op),
		zap.Int("pipelines", len(summaries)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, batchResponse{
		Results:  summaries,
		CSV:      csv,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleOperations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	modes := make([]string, 0, len(scaled.RoundingModes()))
	for _, mode := range scaled.RoundingModes() {
		modes = append(modes, mode.String())
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{
		"operations":    pipeline.Operations(),
		"roundingModes": modes,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// statusFor maps arithmetic failures and exceeded limits to 422 and
// everything else, which is malformed input, to 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scaled.ErrDivisionByZero),
		errors.Is(err, scaled.ErrRoundingRequired),
		errors.Is(err, scaled.ErrOverflow),
		errors.Is(err, pipeline.ErrLimitExceeded):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("evaluation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
