package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/FocuswithJustin/annokit/core/formats"
	apperrors "github.com/FocuswithJustin/annokit/core/errors"
	"github.com/FocuswithJustin/annokit/internal/catalog"
	"github.com/FocuswithJustin/annokit/internal/logging"
	"github.com/FocuswithJustin/annokit/internal/snapshot"
	"github.com/FocuswithJustin/annokit/internal/validation"
)

// Search limits.
const (
	defaultSearchLimit = 100
	maxSearchLimit     = 1000
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the body of GET /health.
type HealthInfo struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Documents int    `json:"documents"`
	SQLite    string `json:"sqlite"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"name":    "annokit API",
		"version": s.cfg.Version,
		"endpoints": []string{
			"GET /health",
			"GET /formats",
			"GET /formats/{name}",
			"GET /documents",
			"DELETE /documents?path=",
			"GET /search",
			"POST /check?format=",
		},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	docs, err := s.catalog.Documents(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:    "healthy",
		Version:   s.cfg.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Documents: len(docs),
		SQLite:    catalog.DriverType(),
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	profiles := formats.List()
	respondList(w, profiles, len(profiles))
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	p, err := formats.Get(r.PathValue("name"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.catalog.Documents(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondList(w, docs, len(docs))
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "path is required")
		return
	}
	if err := s.catalog.Remove(r.Context(), path); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"removed": path})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMS", err.Error())
		return
	}
	hits, err := s.catalog.Search(r.Context(), q)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondList(w, hits, len(hits))
}

func parseQuery(r *http.Request) (catalog.Query, error) {
	v := r.URL.Query()
	q := catalog.Query{
		Tag:      v.Get("tag"),
		Contains: v.Get("contains"),
		Tier:     v.Get("tier"),
		Path:     v.Get("path"),
		Limit:    defaultSearchLimit,
	}
	var err error
	if s := v.Get("from"); s != "" {
		if q.From, err = strconv.ParseFloat(s, 64); err != nil {
			return q, apperrors.NewParse("query", "from", err.Error())
		}
	}
	if s := v.Get("to"); s != "" {
		if q.To, err = strconv.ParseFloat(s, 64); err != nil {
			return q, apperrors.NewParse("query", "to", err.Error())
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil || q.Limit < 1 {
			return q, apperrors.NewParse("query", "limit", "must be a positive integer")
		}
		q.Limit = min(q.Limit, maxSearchLimit)
	}
	return q, nil
}

// handleCheck reports what the snapshot in the request body loses in a
// format. The body may be plain or xz-compressed.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = s.cfg.Profile
	}
	if name == "" {
		name = formats.Native
	}
	profile, err := formats.Get(name)
	if err != nil {
		respondErr(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, validation.MaxSnapshotSize)
	trs, err := snapshot.Read(body, "request body")
	if err != nil {
		respondErr(w, err)
		return
	}
	report, err := formats.Check(trs, profile)
	if err != nil {
		respondErr(w, err)
		return
	}
	logging.CheckResult(r.Context(), report.Format, string(report.LossClass), len(report.LostElements))
	respond(w, http.StatusOK, report)
}

// Helper functions

// respondErr maps err onto an HTTP status and error code.
func respondErr(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &tooLarge), errors.Is(err, validation.ErrTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", err.Error())
	case errors.Is(err, apperrors.ErrUnsupported):
		respondError(w, http.StatusUnprocessableEntity, "UNSUPPORTED", err.Error())
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrTypeMismatch),
		errors.Is(err, apperrors.ErrInvariant),
		errors.Is(err, apperrors.ErrHierarchy),
		errors.Is(err, apperrors.ErrVocabulary),
		errors.Is(err, validation.ErrFileType):
		respondError(w, http.StatusBadRequest, "INVALID_SNAPSHOT", err.Error())
	default:
		logging.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Total: total, Timestamp: timestamp()},
	})
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: timestamp()},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: timestamp()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
