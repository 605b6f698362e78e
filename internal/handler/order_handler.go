package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests for both customers and
// administrators.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Place handles POST /api/orders. The request context must carry the site
// settings snapshot.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), uid, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListForUser(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetForUser(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// AdminList handles GET /api/admin/orders?status=&orderNumber=&limit=&offset=.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filter := model.OrderFilter{
		OrderNumber: r.URL.Query().Get("orderNumber"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.OrderStatus(raw)
		filter.Status = &status
	}

	orders, err := h.service.AdminList(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, orders)
}

// AdminGet handles GET /api/admin/orders/{id}.
func (h *OrderHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.AdminGet(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// AdminUpdate handles PATCH /api/admin/orders/{id}.
func (h *OrderHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.AdminUpdate(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}
