package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"vesseltrack/internal/cache"
	"vesseltrack/internal/catalog"
	"vesseltrack/internal/domain"
	"vesseltrack/internal/journey"
	"vesseltrack/internal/store"
)

type HTTPHandler struct {
	store     *store.Store
	processor *journey.Processor
	catalog   *catalog.Catalog
	cache     *cache.RedisCache // nil when disabled
	cacheTTL  time.Duration

	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHTTPHandler(s *store.Store, p *journey.Processor, cat *catalog.Catalog, c *cache.RedisCache, cacheTTL time.Duration, maxUploadBytes int64, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		store:          s,
		processor:      p,
		catalog:        cat,
		cache:          c,
		cacheTTL:       cacheTTL,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "http_handler"),
	}
}

// uploadRequest is the JSON form of a dataset upload. Multipart uploads carry
// the same fields as form values plus one or more file parts.
type uploadRequest struct {
	Name      string   `json:"name"`
	Delimiter string   `json:"delimiter"`
	CSVTexts  []string `json:"csvTexts"`
}

type datasetResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	Result    *domain.Result `json:"result"`
}

type datasetSummary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"createdAt"`
	Success   bool            `json:"success"`
	Summary   *domain.Summary `json:"summary,omitempty"`
}

// CreateDataset ingests CSV blobs, runs the reconstruction pipeline and
// stores the outcome. A processing failure still yields a 201 with the
// unsuccessful result value, matching the pipeline's error-as-data contract;
// only malformed requests get error statuses.
func (h *HTTPHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()

	req, err := h.parseUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.CSVTexts) == 0 {
		respondError(w, http.StatusBadRequest, "no CSV data provided")
		return
	}

	start := time.Now()
	result := h.processWithCache(r.Context(), req.CSVTexts, req.Delimiter)

	var rows []domain.RawDataRow
	if result.Success {
		// Replay needs the merged rows; recompute them outside the cache.
		rows = h.mergedRows(req.CSVTexts, req.Delimiter)
	}

	ds := h.store.Put(req.Name, result, rows)
	ServerStats.IncDatasetsProcessed()

	h.logger.Info("dataset created",
		"dataset_id", ds.ID,
		"files", len(req.CSVTexts),
		"success", result.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	respondJSON(w, http.StatusCreated, datasetResponse{
		ID:        ds.ID,
		Name:      ds.Name,
		CreatedAt: ds.CreatedAt,
		Result:    ds.Result,
	})
}

func (h *HTTPHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()

	datasets := h.store.List()
	summaries := make([]datasetSummary, 0, len(datasets))
	for _, ds := range datasets {
		s := datasetSummary{
			ID:        ds.ID,
			Name:      ds.Name,
			CreatedAt: ds.CreatedAt,
			Success:   ds.Result.Success,
		}
		if ds.Result.Data != nil {
			s.Summary = &ds.Result.Data.Summary
		}
		summaries = append(summaries, s)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"datasets": summaries,
		"count":    len(summaries),
	})
}

func (h *HTTPHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()

	ds, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		respondError(w, http.StatusNotFound, "dataset not found")
		return
	}

	respondJSON(w, http.StatusOK, datasetResponse{
		ID:        ds.ID,
		Name:      ds.Name,
		CreatedAt: ds.CreatedAt,
		Result:    ds.Result,
	})
}

func (h *HTTPHandler) GetJourney(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()

	ds, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		respondError(w, http.StatusNotFound, "dataset not found")
		return
	}
	if !ds.Result.Success || ds.Result.Data == nil {
		respondError(w, http.StatusConflict, "dataset has no processed journeys")
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 || n > len(ds.Result.Data.Journeys) {
		respondError(w, http.StatusNotFound, "journey not found")
		return
	}

	respondJSON(w, http.StatusOK, ds.Result.Data.Journeys[n-1])
}

func (h *HTTPHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()

	id := r.PathValue("id")
	if !h.store.Delete(id) {
		respondError(w, http.StatusNotFound, "dataset not found")
		return
	}

	h.logger.Info("dataset deleted", "dataset_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ListPorts(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()
	respondJSON(w, http.StatusOK, map[string]any{
		"ports": h.catalog.Ports,
		"count": len(h.catalog.Ports),
	})
}

func (h *HTTPHandler) ListFleet(w http.ResponseWriter, r *http.Request) {
	ServerStats.IncRequests()
	respondJSON(w, http.StatusOK, map[string]any{
		"fleet": h.catalog.Fleet,
		"count": len(h.catalog.Fleet),
	})
}

// processWithCache returns the cached result for identical input when redis
// is enabled, otherwise runs the pipeline and caches the outcome.
func (h *HTTPHandler) processWithCache(ctx context.Context, csvTexts []string, delimiter string) *domain.Result {
	if h.cache == nil {
		return h.processor.ProcessCSVs(csvTexts, delimiter)
	}

	key := cache.KeyResult(cache.InputFingerprint(csvTexts, delimiter))

	var cached domain.Result
	if hit, err := h.cache.GetJSONCompressed(ctx, key, &cached); err == nil && hit {
		ServerStats.IncCacheHits()
		return &cached
	}
	ServerStats.IncCacheMisses()

	result := h.processor.ProcessCSVs(csvTexts, delimiter)
	if result.Success {
		if err := h.cache.SetJSONCompressed(ctx, key, result, h.cacheTTL); err != nil {
			h.logger.Warn("result cache write failed", "error", err)
		}
	}
	return result
}

func (h *HTTPHandler) mergedRows(csvTexts []string, delimiter string) []domain.RawDataRow {
	merged, err := h.processor.Merge(csvTexts, delimiter)
	if err != nil {
		return nil
	}
	return merged.Rows
}

func (h *HTTPHandler) parseUpload(r *http.Request) (*uploadRequest, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return parseMultipartUpload(r)
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errInvalidBody
	}
	return &req, nil
}

func parseMultipartUpload(r *http.Request) (*uploadRequest, error) {
	// Files spill to disk beyond 32 MB; MaxBytesReader already bounds the
	// total.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, errInvalidBody
	}

	req := &uploadRequest{
		Name:      r.FormValue("name"),
		Delimiter: r.FormValue("delimiter"),
	}

	if r.MultipartForm != nil {
		for _, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					return nil, errInvalidBody
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return nil, errInvalidBody
				}
				req.CSVTexts = append(req.CSVTexts, string(data))
			}
		}
	}

	return req, nil
}

var errInvalidBody = errors.New("invalid request body")

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
