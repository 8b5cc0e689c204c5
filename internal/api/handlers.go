package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"gwi.com/chatmood/internal/chatlog"
	"gwi.com/chatmood/internal/core"
	"gwi.com/chatmood/internal/report"
	"gwi.com/chatmood/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	indexListLimit   = 10
	multipartMemory  = 32 << 20
)

type APIHandler struct {
	analysisService *core.AnalysisService
	renderer        *report.Renderer
	logger          zerolog.Logger
	maxUploadBytes  int64
}

func NewAPIHandler(as *core.AnalysisService, renderer *report.Renderer, logger zerolog.Logger, maxUploadBytes int64) *APIHandler {
	return &APIHandler{
		analysisService: as,
		renderer:        renderer,
		logger:          logger,
		maxUploadBytes:  maxUploadBytes,
	}
}

// uploadError carries the status an upload problem should be reported with.
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string { return e.message }

// readUpload returns the uploaded transcript. Multipart requests must carry
// a .txt "file" field; other requests are read whole when allowRaw is set.
func (h *APIHandler) readUpload(w http.ResponseWriter, r *http.Request, allowRaw bool) (string, []byte, error) {
	if r.ContentLength > h.maxUploadBytes {
		return "", nil, &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("The file is larger than %d bytes.", h.maxUploadBytes)}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !allowRaw {
			return "", nil, &uploadError{http.StatusBadRequest, "Upload a chat export using the file field."}
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, bodyError(err)
		}
		name := r.URL.Query().Get("filename")
		if name == "" {
			name = "upload.txt"
		}
		return name, data, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, bodyError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &uploadError{http.StatusBadRequest, "Choose a WhatsApp chat file to upload."}
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".txt") {
		return "", nil, &uploadError{http.StatusBadRequest, "The chat file must be a .txt export."}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, bodyError(err)
	}
	return header.Filename, data, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("The file is larger than %d bytes.", tooLarge.Limit)}
	}
	return &uploadError{http.StatusBadRequest, "Could not read the upload: " + err.Error()}
}

// analysisStatus maps an Analyze error to a status and a user-facing message.
func analysisStatus(err error) (int, string) {
	var ue *uploadError
	switch {
	case errors.As(err, &ue):
		return ue.status, ue.message
	case errors.Is(err, chatlog.ErrInvalidEncoding):
		return http.StatusBadRequest, "The file is not valid UTF-8 text."
	case errors.Is(err, core.ErrClassifier):
		return http.StatusBadGateway, "The emotion classifier failed, no results were produced: " + err.Error()
	}
	return http.StatusInternalServerError, "Failed to analyze the chat."
}

// Dashboard pages

func (h *APIHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, "")
}

func (h *APIHandler) renderIndex(w http.ResponseWriter, r *http.Request, status int, message string) {
	page := report.IndexPage{Error: message}
	if h.analysisService.HistoryEnabled() {
		history, err := h.analysisService.ListAnalyses(r.Context(), indexListLimit)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to list analyses for index")
		}
		page.History = history
	}
	h.renderHTML(w, status, func(buf *bytes.Buffer) error {
		return h.renderer.RenderIndex(buf, page)
	})
}

func (h *APIHandler) AnalyzeUploadHandler(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.readUpload(w, r, false)
	if err != nil {
		status, message := analysisStatus(err)
		h.renderIndex(w, r, status, message)
		return
	}

	analysis, err := h.analysisService.Analyze(r.Context(), filename, data)
	if err != nil {
		status, message := analysisStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("filename", filename).Msg("analysis failed")
		}
		h.renderIndex(w, r, status, message)
		return
	}

	h.renderReport(w, analysis)
}

func (h *APIHandler) ShowAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.lookup(w, r, false)
	if !ok {
		return
	}
	h.renderReport(w, analysis)
}

func (h *APIHandler) ChartHandler(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.lookup(w, r, false)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.RenderChart(&buf, analysis.Counts, h.renderer.Palette()); err != nil {
		h.logger.Error().Err(err).Str("analysis_id", analysis.ID).Msg("failed to render chart")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(buf.Bytes())
}

func (h *APIHandler) renderReport(w http.ResponseWriter, analysis *store.Analysis) {
	page := report.ReportPage{Analysis: analysis}
	if analysis.ID != "" {
		page.ChartURL = "/analyses/" + analysis.ID + "/chart.png"
	}
	h.renderHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.renderer.RenderReport(buf, page)
	})
}

// renderHTML renders into a buffer first so a template error never leaves
// a half-written page behind.
func (h *APIHandler) renderHTML(w http.ResponseWriter, status int, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.logger.Error().Err(err).Msg("failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// lookup loads the analysis named in the URL, writing the error response
// itself when it cannot.
func (h *APIHandler) lookup(w http.ResponseWriter, r *http.Request, asJSON bool) (*store.Analysis, bool) {
	id := chi.URLParam(r, "analysisID")
	fail := func(status int, message string) {
		if asJSON {
			writeError(w, status, message)
		} else {
			http.Error(w, message, status)
		}
	}

	analysis, err := h.analysisService.GetAnalysis(r.Context(), id)
	if errors.Is(err, core.ErrNoStore) {
		fail(http.StatusNotFound, "Analysis history is not enabled")
		return nil, false
	}
	if err != nil {
		h.logger.Error().Err(err).Str("analysis_id", id).Msg("failed to get analysis")
		fail(http.StatusInternalServerError, "Failed to get analysis")
		return nil, false
	}
	if analysis == nil {
		fail(http.StatusNotFound, "Analysis not found")
		return nil, false
	}
	return analysis, true
}

// JSON API

func (h *APIHandler) CreateAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.readUpload(w, r, true)
	if err != nil {
		status, message := analysisStatus(err)
		writeError(w, status, message)
		return
	}

	analysis, err := h.analysisService.Analyze(r.Context(), filename, data)
	if err != nil {
		status, message := analysisStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("filename", filename).Msg("analysis failed")
		}
		writeError(w, status, message)
		return
	}
	writeJSON(w, http.StatusCreated, analysis)
}

func (h *APIHandler) ListAnalysesHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	analyses, err := h.analysisService.ListAnalyses(r.Context(), limit)
	if errors.Is(err, core.ErrNoStore) {
		writeError(w, http.StatusNotFound, "Analysis history is not enabled")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list analyses")
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (h *APIHandler) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.lookup(w, r, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *APIHandler) DeleteAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")

	deleted, err := h.analysisService.DeleteAnalysis(r.Context(), id)
	if errors.Is(err, core.ErrNoStore) {
		writeError(w, http.StatusNotFound, "Analysis history is not enabled")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("analysis_id", id).Msg("failed to delete analysis")
		writeError(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type labelInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

func (h *APIHandler) LabelsHandler(w http.ResponseWriter, r *http.Request) {
	palette := h.renderer.Palette()
	labels := make([]labelInfo, len(core.EmotionLabels))
	for i, l := range core.EmotionLabels {
		labels[i] = labelInfo{Label: l, Color: palette.Color(l)}
	}
	writeJSON(w, http.StatusOK, labels)
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"history": h.analysisService.HistoryEnabled(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
