package runs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/adapters"
	"github.com/de-tools/mpesa-etl/pkg/models/api"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/models/store"
	"github.com/de-tools/mpesa-etl/pkg/services/history"
	"github.com/de-tools/mpesa-etl/pkg/services/pipeline"
	"github.com/de-tools/mpesa-etl/pkg/store/csvfile"
	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	defaultLimit   = 100
	maxLimit       = 1000
	maxUploadBytes = 64 << 20
	defaultSource  = "upload"
)

// Runner executes the pipeline over an extracted table.
type Runner interface {
	Run(ctx context.Context, table domain.Table) (*pipeline.Result, error)
}

type Handler struct {
	runner  Runner
	history history.Service
	reader  *csvfile.Reader
	details *cache.Cache
}

// NewHandler serves runs. Run details are immutable once stored, so they are cached
// for ttl after submission or the first read.
func NewHandler(runner Runner, history history.Service, reader *csvfile.Reader, ttl time.Duration) *Handler {
	return &Handler{
		runner:  runner,
		history: history,
		reader:  reader,
		details: cache.New(ttl, 2*ttl),
	}
}

func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	source := r.URL.Query().Get("source")
	if source == "" {
		source = defaultSource
	}

	table, err := h.reader.Read(ctx, http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		logger.Warn().Err(err).Str("source", source).Msg("rejected upload")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.runner.Run(ctx, table)
	if err != nil {
		logger.Error().Err(err).Msg("pipeline run failed")
		http.Error(w, "pipeline run failed", http.StatusInternalServerError)
		return
	}

	if err := h.history.Record(ctx, source, result); err != nil {
		logger.Error().Err(err).Str("run_id", result.RunID).Msg("failed to store run")
		http.Error(w, "failed to store run", http.StatusInternalServerError)
		return
	}

	detail, err := h.loadDetail(ctx, result.RunID)
	if err != nil {
		h.fail(w, r, result.RunID, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, detail)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	runs, err := h.history.List(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list runs")
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	response := make([]api.Run, 0, len(runs))
	for _, run := range runs {
		response = append(response, adapters.MapStoreRunToAPIRun(run))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "run")

	if cached, found := h.details.Get(id); found {
		logger.Debug().Str("run_id", id).Msg("run detail served from cache")
		writeJSON(ctx, w, http.StatusOK, cached)
		return
	}

	detail, err := h.loadDetail(ctx, id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, detail)
}

// loadDetail reads a run back from the store and caches it. Details are always built
// from the stored aggregates so a run reads the same before and after cache expiry.
func (h *Handler) loadDetail(ctx context.Context, id string) (api.RunDetail, error) {
	run, err := h.history.Get(ctx, id)
	if err != nil {
		return api.RunDetail{}, err
	}
	s, err := h.history.Summary(ctx, id)
	if err != nil {
		return api.RunDetail{}, err
	}

	detail := adapters.MapStoreRunToAPIDetail(run, *s)
	h.details.SetDefault(id, detail)
	return detail, nil
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "run")

	page, err := parsePage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := h.history.Transactions(ctx, id, page)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, api.TransactionPage{
		RunID:        id,
		Limit:        page.Limit,
		Offset:       page.Offset,
		Transactions: adapters.MapEnrichedTableToAPI(table),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, id string, err error) {
	if domain.IsRunNotFound(err) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("run_id", id).Msg("failed to read run")
	http.Error(w, "failed to read run", http.StatusInternalServerError)
}

func parsePage(r *http.Request) (store.Page, error) {
	page := store.Page{Limit: defaultLimit}
	query := r.URL.Query()

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxLimit {
			return page, errors.New("invalid 'limit'. Expected an integer between 1 and 1000")
		}
		page.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return page, errors.New("invalid 'offset'. Expected a non-negative integer")
		}
		page.Offset = offset
	}
	return page, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
