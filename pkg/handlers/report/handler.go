// Package report exposes the comparison reports over HTTP.
package report

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/obs-tools/visit-atlas/pkg/adapters"
	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/cache"
	"github.com/obs-tools/visit-atlas/pkg/models/api"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/services/report"
)

const customDateLayout = "2006-01-02"

type Handler struct {
	reports *report.Service
	cache   *cache.QueryCache
}

func NewHandler(reports *report.Service, qc *cache.QueryCache) *Handler {
	return &Handler{
		reports: reports,
		cache:   qc,
	}
}

func (h *Handler) GetDimensionReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dim, ok := domain.ParseDimension(chi.URLParam(r, "dimension"))
	if !ok {
		writeError(w, r, apperrors.Newf(apperrors.KindInvalidParams,
			"unknown dimension %q", chi.URLParam(r, "dimension")))
		return
	}

	req, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.Dimension = dim

	rep, err := h.reports.DimensionReport(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, adapters.MapDimensionReportDomainToApi(*rep))
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	board, err := h.reports.Dashboard(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, adapters.MapDashboardDomainToApi(*board))
}

func (h *Handler) GetActivitySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.reports.ActivitySummary(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, adapters.MapActivitySummaryDomainToApi(*summary))
}

func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones := h.reports.Zones()
	response := make([]api.Zone, 0, len(zones))
	for _, z := range zones {
		response = append(response, adapters.MapZoneDomainToApi(z))
	}
	respond(w, r, response)
}

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", time.Now().Year())
	if err != nil {
		writeError(w, r, err)
		return
	}

	options, err := h.reports.Periods(year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := make([]api.PeriodOption, 0, len(options))
	for _, o := range options {
		response = append(response, adapters.MapPeriodOptionDomainToApi(o))
	}
	respond(w, r, response)
}

func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.cache.Stats())
}

func (h *Handler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	removed := h.cache.InvalidateAll()
	zerolog.Ctx(r.Context()).Info().Int("removed", removed).Msg("cache purged")
	respond(w, r, map[string]int{"removed": removed})
}

func (h *Handler) PurgeCacheCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	removed := h.cache.Invalidate(category)
	zerolog.Ctx(r.Context()).Info().
		Str("category", category).
		Int("removed", removed).
		Msg("cache category purged")
	respond(w, r, map[string]int{"removed": removed})
}

// parseRequest reads the shared report query parameters. A custom
// range needs both bounds; a half-open or unparseable pair is dropped
// so the symbolic period still applies.
func parseRequest(r *http.Request) (domain.ReportRequest, error) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		return domain.ReportRequest{}, err
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		return domain.ReportRequest{}, err
	}

	req := domain.ReportRequest{
		Year:     year,
		Period:   r.URL.Query().Get("period"),
		Zone:     r.URL.Query().Get("zone"),
		Category: domain.VisitorCategory(r.URL.Query().Get("category")),
		Limit:    limit,
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from != "" && to != "" {
		start, errFrom := time.Parse(customDateLayout, from)
		end, errTo := time.Parse(customDateLayout, to)
		if errFrom == nil && errTo == nil {
			req.Custom = &domain.CustomRange{Start: start, End: end}
		} else {
			zerolog.Ctx(r.Context()).Warn().
				Str("from", from).
				Str("to", to).
				Msg("unparseable custom range ignored")
		}
	}
	return req, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Newf(apperrors.KindInvalidParams, "%s %q is not a number", name, raw)
	}
	return v, nil
}

func respond(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)

	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Str("kind", string(kind)).Msg("request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: api.ErrorBody{
			Kind:    string(kind),
			Message: apperrors.MessageOf(err),
		},
	})
	if encodeErr != nil {
		logger.Error().Err(encodeErr).Msg("failed to encode error response")
	}
}
