// Package handlers exposes the dashboard's data engines over HTTP.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amlwatch/dashboard/internal/api/middleware"
	"github.com/amlwatch/dashboard/internal/backend"
	"github.com/amlwatch/dashboard/internal/domain"
	"github.com/amlwatch/dashboard/internal/format"
	"github.com/amlwatch/dashboard/internal/grid"
	"github.com/amlwatch/dashboard/internal/patterns"
	"github.com/amlwatch/dashboard/internal/timeline"
)

// CustomerService is the slice of the analysis backend the customer
// endpoints consume.
type CustomerService interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	Overview(ctx context.Context, bcn string) (*domain.CustomerOverview, error)
}

// CustomerHandler serves search and the per-customer derived views.
type CustomerHandler struct {
	svc CustomerService
	log zerolog.Logger
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(svc CustomerService, log zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, log: log}
}

// Search handles GET /api/search?q=. Backend failures degrade to an empty
// result list; search must never block typing.
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		middleware.WriteJSON(w, http.StatusOK, []domain.SearchResult{})
		return
	}

	results, err := h.svc.Search(r.Context(), q)
	if err != nil {
		h.log.Warn().Err(err).Str("query", q).Msg("customer search failed")
		middleware.WriteJSON(w, http.StatusOK, []domain.SearchResult{})
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	middleware.WriteJSON(w, http.StatusOK, results)
}

// Overview handles GET /api/customer/{bcn}/overview. A failed load yields
// an error payload, never a partial aggregate.
func (h *CustomerHandler) Overview(w http.ResponseWriter, r *http.Request) {
	data, ok := h.ensure(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, data)
}

// Grid handles GET /api/customer/{bcn}/grid?filter=&sort=&dir=&page=.
// Malformed parameters fall back to the defaults rather than failing.
func (h *CustomerHandler) Grid(w http.ResponseWriter, r *http.Request) {
	data, ok := h.ensure(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	page, err := strconv.Atoi(params.Get("page"))
	if err != nil {
		page = 0
	}
	q := grid.Query{
		Filter: params.Get("filter"),
		Sort:   grid.ParseColumn(params.Get("sort")),
		Dir:    grid.ParseDirection(params.Get("dir")),
		Page:   page,
	}
	middleware.WriteJSON(w, http.StatusOK, grid.View(data.Transactions, q))
}

// timelinePayload wraps the series with a y-axis hint for the peak volume.
type timelinePayload struct {
	timeline.Series
	PeakLabel string `json:"peak_label,omitempty"`
}

// Timeline handles GET /api/customer/{bcn}/timeline.
func (h *CustomerHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	data, ok := h.ensure(w, r)
	if !ok {
		return
	}
	series := timeline.Build(data.Transactions, data.Alerts)
	payload := timelinePayload{Series: series}
	var peak float64
	for _, p := range series.Points {
		if p.Amount > peak {
			peak = p.Amount
		}
	}
	if peak > 0 {
		payload.PeakLabel = format.Abbrev(peak)
	}
	middleware.WriteJSON(w, http.StatusOK, payload)
}

// patternsPayload bundles the reshaped series with the graded ratios and a
// risk colour hint for the score dial.
type patternsPayload struct {
	Monthly    []patterns.MonthlyVolume `json:"monthly"`
	ByType     []patterns.LabeledValue  `json:"by_type"`
	ByCurrency []patterns.LabeledValue  `json:"by_currency"`
	Ratios     patterns.RatioSummary    `json:"ratios"`
	// AvgSizeDisplay is the pre-rendered stat-card value; EUR is the
	// dashboard's display default for cross-currency aggregates.
	AvgSizeDisplay string `json:"avg_size_display"`
	RiskColor      string `json:"risk_color"`
}

// Patterns handles GET /api/customer/{bcn}/patterns.
func (h *CustomerHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	data, ok := h.ensure(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, patternsPayload{
		Monthly:        patterns.Monthly(data.Patterns),
		ByType:         patterns.ByType(data.Patterns),
		ByCurrency:     patterns.ByCurrency(data.Patterns),
		Ratios:         patterns.Ratios(data.Patterns),
		AvgSizeDisplay: format.Currency(data.Patterns.AvgTransactionSize, "EUR"),
		RiskColor:      format.RiskColor(string(data.RiskAssessment.RiskLevel)),
	})
}

// ensure resolves the path's bcn to a fresh aggregate, writing the error
// response itself when the fetch fails. Every request fetches anew: the
// backend's datasets change underneath us on upload and clear, and the
// panels for one customer load in parallel, so no aggregate is shared
// across requests.
func (h *CustomerHandler) ensure(w http.ResponseWriter, r *http.Request) (*domain.CustomerOverview, bool) {
	bcn := r.PathValue("bcn")
	if bcn == "" {
		middleware.WriteError(w, http.StatusBadRequest, "business contact number is required")
		return nil, false
	}
	data, err := h.svc.Overview(r.Context(), bcn)
	if err != nil {
		h.log.Warn().Err(err).Str("bcn", bcn).Msg("overview fetch failed")
		middleware.WriteError(w, backendStatus(err), err.Error())
		return nil, false
	}
	return data, true
}

// backendStatus maps a backend failure onto this API: not-found passes
// through, everything else is a bad gateway.
func backendStatus(err error) int {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
