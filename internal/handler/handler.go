// Package handler содержит HTTP-обработчики API фермерского магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/milanbouzek/farmshop-system/internal/middleware"
	"github.com/milanbouzek/farmshop-system/internal/model"
	"github.com/milanbouzek/farmshop-system/internal/repository"
	"github.com/milanbouzek/farmshop-system/internal/service"
	"github.com/milanbouzek/farmshop-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	SubmitOrder(ctx context.Context, in service.OrderInput) (*model.Order, error)
	SubmitReservation(ctx context.Context, in service.OrderInput) (*model.Reservation, error)
	Availability(ctx context.Context, requestedQty int) (*model.Availability, error)
	ConfirmReservation(ctx context.Context, publicID string) (*model.Order, error)
	CancelReservation(ctx context.Context, publicID string) error
	AdvanceOrderStatus(ctx context.Context, publicID string) (model.OrderStatus, error)
	CancelOrder(ctx context.Context, publicID string) error
	SetOrderPaid(ctx context.Context, publicID string, paid bool) error
	OverrideOrderPrice(ctx context.Context, publicID string, price int) error
	UpdateOrderQuantities(ctx context.Context, publicID string, standard, lowChol int) (int, error)
	GetOrder(ctx context.Context, publicID string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetReservation(ctx context.Context, publicID string) (*model.Reservation, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	GetStock(ctx context.Context) (*model.Stock, error)
	UpdateStock(ctx context.Context, standard, lowChol int) error
	GetDailyProduction(ctx context.Context) (int, error)
	SetDailyProduction(ctx context.Context, rate int) error
	CreateExpense(ctx context.Context, e *model.Expense) error
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	AddProductionRecord(ctx context.Context, rec *model.ProductionRecord) error
	ListProduction(ctx context.Context) ([]model.ProductionRecord, error)
}

// Handler реализует HTTP-обработчики API фермерского магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Remaining *int   `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError переводит ошибки бизнес-логики в HTTP-статусы:
// нарушения правил — 422, превышение лимита и конфликты статусов — 409,
// отсутствующие сущности — 404, остальное — 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var capErr *model.CapacityError
	if errors.As(err, &capErr) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: capErr.Error(), Remaining: &capErr.Remaining})
		return
	}

	switch {
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidPickupDate),
		errors.Is(err, validation.ErrNegativeQuantity),
		errors.Is(err, validation.ErrBelowMinimum),
		errors.Is(err, validation.ErrNotMultiple),
		errors.Is(err, validation.ErrExceedsRequestCap),
		errors.Is(err, repository.ErrMissingPickupDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrReservationClosed),
		errors.Is(err, repository.ErrStatusFinal),
		errors.Is(err, repository.ErrProductionExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

type submitRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Standard   int    `json:"standard"`
	LowChol    int    `json:"low_chol"`
	Location   string `json:"location"`
	PickupDate string `json:"pickup_date"`
	Note       string `json:"note"`
}

func (r submitRequest) toInput() (service.OrderInput, error) {
	in := service.OrderInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Standard: r.Standard,
		LowChol:  r.LowChol,
		Location: model.PickupLocation(r.Location),
		Note:     r.Note,
	}

	if r.PickupDate != "" {
		d, err := time.Parse(time.DateOnly, r.PickupDate)
		if err != nil {
			return in, err
		}
		in.PickupDate = &d
	}

	return in, nil
}

type orderResponse struct {
	ID         string `json:"id"`
	Price      int    `json:"price"`
	Status     string `json:"status"`
	PickupDate string `json:"pickup_date"`
}

// SubmitOrder принимает заказ от покупателя.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pickup date format, expected YYYY-MM-DD")
		return
	}

	o, err := h.service.SubmitOrder(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{
		ID:         o.PublicID,
		Price:      o.Price,
		Status:     string(o.Status),
		PickupDate: o.PickupDate.Format(time.DateOnly),
	})
}

type reservationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SubmitReservation принимает предзаказ от покупателя.
func (h *Handler) SubmitReservation(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pickup date format, expected YYYY-MM-DD")
		return
	}

	res, err := h.service.SubmitReservation(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservationResponse{
		ID:     res.PublicID,
		Status: string(res.Status),
	})
}

type availabilityResponse struct {
	StockTotal      int    `json:"stock_total"`
	Reserved        int    `json:"reserved"`
	Available       int    `json:"available"`
	DailyProduction int    `json:"daily_production"`
	RequestedQty    int    `json:"requested_qty"`
	DaysNeeded      int    `json:"days_needed"`
	EarliestPickup  string `json:"earliest_pickup"`
}

// GetAvailability возвращает текущую доступность и прогноз самой ранней даты
// самовывоза. Параметр qty необязателен, по умолчанию один десяток.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	qty := validation.LotSize
	if raw := r.URL.Query().Get("qty"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "qty must be a positive integer")
			return
		}
		qty = parsed
	}

	av, err := h.service.Availability(r.Context(), qty)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, availabilityResponse{
		StockTotal:      av.StockTotal,
		Reserved:        av.Reserved,
		Available:       av.Available,
		DailyProduction: av.DailyProduction,
		RequestedQty:    av.RequestedQty,
		DaysNeeded:      av.DaysNeeded,
		EarliestPickup:  av.EarliestPickup.Format(time.DateOnly),
	})
}
