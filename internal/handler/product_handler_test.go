package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_GetAll(t *testing.T) {
	testProducts := []model.Product{
		{ID: "P001", Name: "Product 1", Price: decimal.RequireFromString("10.00"), Category: "Cat1"},
		{ID: "P002", Name: "Product 2", Price: decimal.RequireFromString("20.00"), Category: "Cat2"},
	}

	tests := []struct {
		name           string
		query          string
		expectLimit    int
		expectOffset   int
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{name: "Defaults", query: "", expectLimit: 10, expectOffset: 0, expectService: true, expectedStatus: http.StatusOK},
		{name: "Custom paging", query: "?limit=5&offset=10", expectLimit: 5, expectOffset: 10, expectService: true, expectedStatus: http.StatusOK},
		{name: "Invalid limit", query: "?limit=abc", expectedStatus: http.StatusBadRequest},
		{name: "Invalid offset", query: "?offset=x", expectedStatus: http.StatusBadRequest},
		{name: "Service error", query: "", expectLimit: 10, mockError: errors.New("database error"), expectService: true, expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			h := NewProductHandler(mockService, zerolog.Nop())

			if tt.expectService {
				if tt.mockError != nil {
					mockService.On("GetAll", mock.Anything, tt.expectLimit, tt.expectOffset).Return(nil, tt.mockError)
				} else {
					mockService.On("GetAll", mock.Anything, tt.expectLimit, tt.expectOffset).Return(testProducts, nil)
				}
			}

			w := serve(h.GetAll, http.MethodGet, "/api/products", "/api/products"+tt.query, "", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decode(t, w)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, env.Success)
			if tt.expectedStatus == http.StatusOK {
				var products []model.Product
				require.NoError(t, json.Unmarshal(env.Data, &products))
				assert.Len(t, products, 2)
				assert.True(t, products[0].Price.Equal(decimal.RequireFromString("10")))
			}
			if !tt.expectService {
				mockService.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything, mock.Anything)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	mockService := new(MockProductService)
	h := NewProductHandler(mockService, zerolog.Nop())

	mockService.On("GetByID", mock.Anything, "P001").Return(&model.Product{ID: "P001", Name: "Teapot"}, nil)
	mockService.On("GetByID", mock.Anything, "P404").Return(nil, model.ErrProductNotFound)

	w := serve(h.GetByID, http.MethodGet, "/api/products/{id}", "/api/products/P001", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"name":"Teapot"`)

	w = serve(h.GetByID, http.MethodGet, "/api/products/{id}", "/api/products/P404", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, model.ErrCodeProductNotFound, decode(t, w).Code)
}

func TestProductHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockError      error
		expectService  bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Created",
			body:           `{"id":"P001","name":"Teapot","price":"19.99","stock":5}`,
			expectService:  true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid JSON",
			body:           `{"id":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Validation failure",
			body:           `{"id":"P001","name":"","price":"1"}`,
			mockError:      model.NewValidationError("product name is required"),
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			h := NewProductHandler(mockService, zerolog.Nop())

			if tt.expectService {
				if tt.mockError != nil {
					mockService.On("Create", mock.Anything, mock.Anything).Return(nil, tt.mockError)
				} else {
					mockService.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateProductRequest) bool {
						return req.ID == "P001" && req.Price.Equal(decimal.RequireFromString("19.99"))
					})).Return(&model.Product{ID: "P001"}, nil)
				}
			}

			w := serve(h.Create, http.MethodPost, "/api/admin/products", "/api/admin/products", tt.body, &testAdmin)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decode(t, w).Code)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Update_StaleVersion(t *testing.T) {
	mockService := new(MockProductService)
	h := NewProductHandler(mockService, zerolog.Nop())

	mockService.On("Update", mock.Anything, "P001", mock.MatchedBy(func(req *model.UpdateProductRequest) bool {
		return req.Version == 1 && req.Stock != nil && *req.Stock == 7
	})).Return(nil, model.ErrVersionConflict.WithDetails(map[string]int{"currentVersion": 2}))

	w := serve(h.Update, http.MethodPatch, "/api/admin/products/{id}", "/api/admin/products/P001", `{"stock":7,"version":1}`, &testAdmin)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.Equal(t, model.ErrCodeConflict, env.Code)
	assert.JSONEq(t, `{"currentVersion":2}`, string(env.Details))
}
