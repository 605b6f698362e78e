package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// AddressHandler serves the caller's address book.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /api/addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	addresses, err := h.service.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, addresses)
}

// Get handles GET /api/addresses/{id}.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id", model.ErrAddressNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	address, err := h.service.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, address)
}

// Create handles POST /api/addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	address, err := h.service.Create(r.Context(), uid, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, address)
}

// Update handles PUT /api/addresses/{id}.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id", model.ErrAddressNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	address, err := h.service.Update(r.Context(), uid, id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, address)
}

// Delete handles DELETE /api/addresses/{id}.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id", model.ErrAddressNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), uid, id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"id": id.String()})
}
