package service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DrewDeMo/finance/internal/analysis"
	"github.com/DrewDeMo/finance/internal/middleware"
	"github.com/DrewDeMo/finance/internal/storage"
)

// AnalysisService serves spending aggregations for the analysis view.
type AnalysisService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewAnalysisService creates an analysis service over the given store.
func NewAnalysisService(store storage.Store, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{store: store, logger: logger}
}

// Register mounts the analysis route. Requires a session.
func (s *AnalysisService) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	e.GET("/api/analysis", s.handleAnalysis, requireAuth)
}

type totalResponse struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type analysisResponse struct {
	TimeFrame     string          `json:"time_frame"`
	ByCategory    []totalResponse `json:"by_category"`
	BySubcategory []totalResponse `json:"by_subcategory"`
}

// handleAnalysis serves GET /api/analysis?time_frame=month|quarter|year.
func (s *AnalysisService) handleAnalysis(c echo.Context) error {
	userID := middleware.GetUserID(c)

	tf, err := analysis.ParseTimeFrame(c.QueryParam("time_frame"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bills, err := s.store.ListBills(c.Request().Context(), userID)
	if err != nil {
		s.logger.Error("Analysis fetch failed", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load bills")
	}

	filtered := analysis.Filter(bills, tf, time.Now())
	return c.JSON(http.StatusOK, analysisResponse{
		TimeFrame:     string(tf),
		ByCategory:    toTotals(analysis.ByCategory(filtered)),
		BySubcategory: toTotals(analysis.BySubcategory(filtered)),
	})
}

func toTotals(in []analysis.Total) []totalResponse {
	out := make([]totalResponse, len(in))
	for i, t := range in {
		out[i] = totalResponse{Name: t.Name, Amount: t.Amount.String()}
	}
	return out
}
