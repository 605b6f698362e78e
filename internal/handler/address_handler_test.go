package handler

import (
	"net/http"
	"testing"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddressHandler_Create(t *testing.T) {
	mockService := new(MockAddressService)
	h := NewAddressHandler(mockService, zerolog.Nop())

	id := uuid.New()
	mockService.On("Create", mock.Anything, testUser.ID, mock.MatchedBy(func(req *model.AddressRequest) bool {
		return req.City == "London" && req.IsDefault
	})).Return(&model.Address{ID: id, City: "London", IsDefault: true}, nil)

	body := `{"recipient":"Ada","line1":"1 Road","city":"London","country":"GB","isDefault":true}`
	w := serve(h.Create, http.MethodPost, "/api/addresses", "/api/addresses", body, &testUser)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(decode(t, w).Data), id.String())
	mockService.AssertExpectations(t)
}

func TestAddressHandler_GetUpdateDelete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		method         string
		body           string
		setup          func(m *MockAddressService)
		handler        func(h *AddressHandler) http.HandlerFunc
		expectedStatus int
	}{
		{
			name:   "Get owned",
			method: http.MethodGet,
			setup: func(m *MockAddressService) {
				m.On("Get", mock.Anything, testUser.ID, id).Return(&model.Address{ID: id}, nil)
			},
			handler:        func(h *AddressHandler) http.HandlerFunc { return h.Get },
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Get not owned",
			method: http.MethodGet,
			setup: func(m *MockAddressService) {
				m.On("Get", mock.Anything, testUser.ID, id).Return(nil, model.ErrAddressNotFound)
			},
			handler:        func(h *AddressHandler) http.HandlerFunc { return h.Get },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "Update invalid",
			method: http.MethodPut,
			body:   `{"recipient":""}`,
			setup: func(m *MockAddressService) {
				m.On("Update", mock.Anything, testUser.ID, id, mock.Anything).Return(nil, model.NewValidationError("recipient is required"))
			},
			handler:        func(h *AddressHandler) http.HandlerFunc { return h.Update },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "Delete",
			method: http.MethodDelete,
			setup: func(m *MockAddressService) {
				m.On("Delete", mock.Anything, testUser.ID, id).Return(nil)
			},
			handler:        func(h *AddressHandler) http.HandlerFunc { return h.Delete },
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAddressService)
			h := NewAddressHandler(mockService, zerolog.Nop())
			tt.setup(mockService)

			w := serve(tt.handler(h), tt.method, "/api/addresses/{id}", "/api/addresses/"+id.String(), tt.body, &testUser)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAddressHandler_List(t *testing.T) {
	mockService := new(MockAddressService)
	h := NewAddressHandler(mockService, zerolog.Nop())

	mockService.On("List", mock.Anything, testUser.ID).Return([]model.Address{}, nil)

	w := serve(h.List, http.MethodGet, "/api/addresses", "/api/addresses", "", &testUser)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decode(t, w).Data))
}
