package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/DrewDeMo/finance/internal/billing"
	"github.com/DrewDeMo/finance/internal/metrics"
	"github.com/DrewDeMo/finance/internal/middleware"
	"github.com/DrewDeMo/finance/internal/models"
	"github.com/DrewDeMo/finance/internal/notify"
	"github.com/DrewDeMo/finance/internal/storage"
)

// BillService exposes bill CRUD, the month view (which runs the full
// fetch/expand/reconcile cycle), and the calendar projection.
type BillService struct {
	store  storage.Store
	engine *billing.Engine
	feed   *notify.Feed
	logger *slog.Logger
}

// NewBillService creates a bill service over the given store and engine.
func NewBillService(store storage.Store, engine *billing.Engine, feed *notify.Feed, logger *slog.Logger) *BillService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillService{
		store:  store,
		engine: engine,
		feed:   feed,
		logger: logger,
	}
}

// Register mounts the bill routes. All of them require a session.
func (s *BillService) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/api/bills", requireAuth)
	g.GET("", s.handleListMonth)
	g.POST("", s.handleCreate)
	g.GET("/:id", s.handleGet)
	g.PUT("/:id", s.handleUpdate)
	g.DELETE("/:id", s.handleDelete)
	g.POST("/:id/toggle", s.handleToggleStatus)

	e.GET("/api/calendar", s.handleCalendar, requireAuth)
}

type billRequest struct {
	Name          string `json:"name"`
	Amount        string `json:"amount"`
	DueDate       string `json:"due_date"`
	Frequency     string `json:"frequency"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory"`
	Status        string `json:"status"`
	IsAutomatic   bool   `json:"is_automatic"`
	PaymentURL    string `json:"payment_url"`
	PaymentMethod string `json:"payment_method"`
}

type billResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Amount        string `json:"amount"`
	DueDate       string `json:"due_date"`
	Frequency     string `json:"frequency"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	Status        string `json:"status"`
	PaidDate      string `json:"paid_date,omitempty"`
	IsAutomatic   bool   `json:"is_automatic"`
	PaymentURL    string `json:"payment_url,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

func toBillResponse(b *models.Bill) billResponse {
	resp := billResponse{
		ID:            b.ID,
		Name:          b.Name,
		Amount:        b.Amount.String(),
		DueDate:       models.FormatDay(b.DueDate),
		Frequency:     string(b.Frequency),
		Category:      string(b.Category),
		Subcategory:   string(b.Subcategory),
		Status:        string(b.Status),
		IsAutomatic:   b.IsAutomatic,
		PaymentURL:    b.PaymentURL,
		PaymentMethod: string(b.PaymentMethod),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.PaidDate != nil {
		resp.PaidDate = models.FormatDay(*b.PaidDate)
	}
	return resp
}

// applyRequest copies a request body onto a bill, validating as it goes.
// Status changes keep the paid-date invariant: switching to paid stamps
// today, switching to unpaid clears it.
func applyRequest(bill *models.Bill, req *billRequest) error {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q", req.Amount)
	}
	dueDate, err := models.ParseDay(req.DueDate)
	if err != nil {
		return err
	}

	bill.Name = req.Name
	bill.Amount = amount
	bill.DueDate = dueDate
	bill.Frequency = models.Frequency(req.Frequency)
	bill.Category = models.Category(req.Category)
	bill.Subcategory = models.Subcategory(req.Subcategory)
	bill.IsAutomatic = req.IsAutomatic
	bill.PaymentURL = req.PaymentURL
	bill.PaymentMethod = models.PaymentMethod(req.PaymentMethod)

	status := models.Status(req.Status)
	if status == "" {
		status = models.StatusUnpaid
	}
	if status != bill.Status {
		switch status {
		case models.StatusPaid:
			bill.MarkPaid(time.Now())
		case models.StatusUnpaid:
			bill.MarkUnpaid()
		default:
			bill.Status = status // rejected by Validate below
		}
	}

	return bill.Validate()
}

// handleListMonth serves GET /api/bills?month=YYYY-MM. It runs the full load
// cycle for the requested month (defaulting to the current one) and returns
// the resulting bill set.
func (s *BillService) handleListMonth(c echo.Context) error {
	userID := middleware.GetUserID(c)

	target := time.Now()
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid month %q, want YYYY-MM", raw))
		}
		target = parsed
	}

	sink := metrics.CountingNotifier(s.feed.ForUser(userID))
	bills, err := s.engine.LoadMonth(c.Request().Context(), userID, target, sink)
	if err != nil {
		if errors.Is(err, billing.ErrNoUser) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		s.logger.Error("Load cycle failed", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load bills")
	}

	resp := make([]billResponse, len(bills))
	for i, b := range bills {
		resp[i] = toBillResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *BillService) handleCreate(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req billRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	bill := &models.Bill{UserID: userID, Status: models.StatusUnpaid}
	if err := applyRequest(bill, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.store.CreateBill(c.Request().Context(), bill); err != nil {
		if errors.Is(err, storage.ErrDuplicateBill) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		s.logger.Error("CreateBill failed", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create bill")
	}

	metrics.BillsCreated.Inc()
	s.logger.Info("Bill created", "bill_id", bill.ID, "user_id", userID, "bill", bill.Name)
	return c.JSON(http.StatusCreated, toBillResponse(bill))
}

func (s *BillService) handleGet(c echo.Context) error {
	userID := middleware.GetUserID(c)

	bill, err := s.store.GetBill(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "bill not found")
		}
		s.logger.Error("GetBill failed", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load bill")
	}
	return c.JSON(http.StatusOK, toBillResponse(bill))
}

func (s *BillService) handleUpdate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	ctx := c.Request().Context()

	bill, err := s.store.GetBill(ctx, userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "bill not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load bill")
	}

	var req billRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := applyRequest(bill, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "bill not found")
		case errors.Is(err, storage.ErrDuplicateBill):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		s.logger.Error("UpdateBill failed", "bill_id", bill.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update bill")
	}

	s.logger.Info("Bill updated", "bill_id", bill.ID, "user_id", userID)
	return c.JSON(http.StatusOK, toBillResponse(bill))
}

func (s *BillService) handleDelete(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if err := s.store.DeleteBill(c.Request().Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "bill not found")
		}
		s.logger.Error("DeleteBill failed", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete bill")
	}

	s.logger.Info("Bill deleted", "bill_id", c.Param("id"), "user_id", userID)
	return c.NoContent(http.StatusNoContent)
}

// handleToggleStatus flips a bill between paid and unpaid. Paying stamps
// today as the paid date; unpaying clears it.
func (s *BillService) handleToggleStatus(c echo.Context) error {
	userID := middleware.GetUserID(c)
	ctx := c.Request().Context()

	bill, err := s.store.GetBill(ctx, userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "bill not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load bill")
	}

	if bill.Status == models.StatusPaid {
		bill.MarkUnpaid()
	} else {
		bill.MarkPaid(time.Now())
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		s.logger.Error("Status toggle failed", "bill_id", bill.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update bill")
	}

	s.logger.Info("Bill status toggled", "bill_id", bill.ID, "status", bill.Status)
	return c.JSON(http.StatusOK, toBillResponse(bill))
}

type calendarEvent struct {
	Title  string `json:"title"`
	Start  string `json:"start"`
	End    string `json:"end"`
	AllDay bool   `json:"all_day"`
	Status string `json:"status"`
	BillID string `json:"bill_id"`
}

// handleCalendar serves GET /api/calendar: every bill as an all-day event on
// its due date, carrying its status so the frontend can color paid vs unpaid.
func (s *BillService) handleCalendar(c echo.Context) error {
	userID := middleware.GetUserID(c)

	bills, err := s.store.ListBills(c.Request().Context(), userID)
	if err != nil {
		s.logger.Error("Calendar fetch failed", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load bills")
	}

	events := make([]calendarEvent, len(bills))
	for i, b := range bills {
		day := models.FormatDay(b.DueDate)
		events[i] = calendarEvent{
			Title:  fmt.Sprintf("%s - $%s", b.Name, b.Amount.String()),
			Start:  day,
			End:    day,
			AllDay: true,
			Status: string(b.Status),
			BillID: b.ID,
		}
	}
	return c.JSON(http.StatusOK, events)
}
