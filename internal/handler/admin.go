package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/milanbouzek/farmshop-system/internal/model"
)

func parsePositiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login проверяет пароль администратора и устанавливает cookie сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.authMiddleware.CheckPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	h.authMiddleware.SetSessionCookie(w)
	w.WriteHeader(http.StatusOK)
}

// GetOrder возвращает один заказ для панели администратора.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// GetReservation возвращает один предзаказ для панели администратора.
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetReservation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ListOrders возвращает все заказы для панели администратора.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListReservations возвращает все предзаказы для панели администратора.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.service.ListReservations(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if len(reservations) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

type statusResponse struct {
	Status string `json:"status"`
}

// AdvanceOrder переводит заказ в следующий статус.
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	next, err := h.service.AdvanceOrderStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: string(next)})
}

// CancelOrder отменяет заказ.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type paidRequest struct {
	Paid bool `json:"paid"`
}

// SetOrderPaid устанавливает признак оплаты заказа.
func (h *Handler) SetOrderPaid(w http.ResponseWriter, r *http.Request) {
	var req paidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetOrderPaid(r.Context(), chi.URLParam(r, "id"), req.Paid); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type priceRequest struct {
	Price int `json:"price"`
}

// OverrideOrderPrice заменяет цену заказа на введённую вручную.
func (h *Handler) OverrideOrderPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.OverrideOrderPrice(r.Context(), chi.URLParam(r, "id"), req.Price); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type quantitiesRequest struct {
	Standard int `json:"standard"`
	LowChol  int `json:"low_chol"`
}

type priceResponse struct {
	Price int `json:"price"`
}

// UpdateOrderQuantities меняет количества заказа и возвращает актуальную цену.
func (h *Handler) UpdateOrderQuantities(w http.ResponseWriter, r *http.Request) {
	var req quantitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := h.service.UpdateOrderQuantities(r.Context(), chi.URLParam(r, "id"), req.Standard, req.LowChol)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{Price: price})
}

// ConfirmReservation превращает предзаказ в заказ.
func (h *Handler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.ConfirmReservation(r.Context(), chi.URLParam(r, "id"))
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

// CancelReservation отменяет предзаказ.
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelReservation(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetStock возвращает текущий остаток.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.service.GetStock(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stock)
}

type stockRequest struct {
	Standard int `json:"standard"`
	LowChol  int `json:"low_chol"`
}

// UpdateStock устанавливает остаток.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateStock(r.Context(), req.Standard, req.LowChol); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type productionRateBody struct {
	DailyProduction int `json:"daily_production"`
}

// GetProductionRate возвращает дневную скорость производства.
func (h *Handler) GetProductionRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.GetDailyProduction(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productionRateBody{DailyProduction: rate})
}

// SetProductionRate устанавливает дневную скорость производства.
func (h *Handler) SetProductionRate(w http.ResponseWriter, r *http.Request) {
	var req productionRateBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetDailyProduction(r.Context(), req.DailyProduction); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type expenseRequest struct {
	SpentOn  string `json:"spent_on"`
	Category string `json:"category"`
	Amount   int    `json:"amount"`
	Note     string `json:"note"`
}

// CreateExpense сохраняет запись о расходах.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spentOn, err := time.Parse(time.DateOnly, req.SpentOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	if req.Category == "" {
		writeError(w, http.StatusUnprocessableEntity, "expense category is required")
		return
	}

	e := &model.Expense{
		SpentOn:  spentOn,
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	}
	if err := h.service.CreateExpense(r.Context(), e); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

// ListExpenses возвращает записи о расходах.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.ListExpenses(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if len(expenses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

// DeleteExpense удаляет запись о расходах.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type productionRequest struct {
	ProducedOn string `json:"produced_on"`
	Standard   int    `json:"standard"`
	LowChol    int    `json:"low_chol"`
	Note       string `json:"note"`
}

// AddProductionRecord сохраняет дневную запись производства.
func (h *Handler) AddProductionRecord(w http.ResponseWriter, r *http.Request) {
	var req productionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	producedOn, err := time.Parse(time.DateOnly, req.ProducedOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	rec := &model.ProductionRecord{
		ProducedOn: producedOn,
		Standard:   req.Standard,
		LowChol:    req.LowChol,
		Note:       req.Note,
	}
	if err := h.service.AddProductionRecord(r.Context(), rec); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// ListProduction возвращает дневные записи производства.
func (h *Handler) ListProduction(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListProduction(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
