package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"tracker/internal/core"
	"tracker/internal/export"
	"tracker/internal/log"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// SummaryResponse is the headline totals view.
type SummaryResponse struct {
	TotalIncome  core.Money `json:"totalIncome"`
	TotalExpense core.Money `json:"totalExpense"`
	Balance      core.Money `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Analytics.Summary(r.Context())
	if err != nil {
		respondError(w, r, err, "Failed to compute summary")
		return
	}
	NewJSONResponse().Body(SummaryResponse{
		TotalIncome:  sum.TotalIncome,
		TotalExpense: sum.TotalExpense,
		Balance:      sum.Balance,
	}).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Analytics.Dashboard(r.Context())
	if err != nil {
		respondError(w, r, err, "Failed to load dashboard")
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Analytics.Analytics(r.Context())
	if err != nil {
		respondError(w, r, err, "Failed to compute analytics")
		return
	}
	NewJSONResponse().Body(a).Write(w)
}

// handleChart renders into a buffer first so a failure can still answer
// with a JSON error.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseChartKind(r.URL.Query().Get("kind"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	a, err := s.svc.Analytics.Analytics(r.Context())
	if err != nil {
		respondError(w, r, err, "Failed to compute analytics")
		return
	}

	var buf bytes.Buffer
	if err := export.RenderChart(&buf, kind, a); err != nil {
		if errors.Is(err, export.ErrNoData) {
			NotFoundError("No data to chart").Write(w)
			return
		}
		respondError(w, r, err, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	txns, err := s.svc.Analytics.Search(r.Context(), ParseFilterInput(r.URL.Query()))
	if err != nil {
		respondError(w, r, err, "Failed to search transactions")
		return
	}
	NewJSONResponse().Body(txns).Write(w)
}

// handleExport downloads the search result as a file. It accepts the same
// filter parameters as /api/search.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	txns, err := s.svc.Analytics.Search(r.Context(), ParseFilterInput(r.URL.Query()))
	if err != nil {
		respondError(w, r, err, "Failed to export transactions")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, txns); err != nil {
		respondError(w, r, err, "Failed to export transactions")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported",
		log.FieldOperation, log.OpExport, "format", string(format), "rows", len(txns))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Analytics.Categories(r.Context())
	if err != nil {
		respondError(w, r, err, "Failed to load categories")
		return
	}
	if cats == nil {
		cats = []string{}
	}
	NewJSONResponse().Body(cats).Write(w)
}
