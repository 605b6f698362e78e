package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopfront/internal/auth"
	"shopfront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testUser  = auth.Principal{ID: "user-1", Role: auth.RoleUser}
	testAdmin = auth.Principal{ID: "admin-1", Role: auth.RoleAdmin}
)

// envelope decodes both success and error bodies.
type envelope struct {
	Success       bool            `json:"success"`
	Data          json.RawMessage `json:"data"`
	Error         string          `json:"error"`
	Code          string          `json:"code"`
	Details       json.RawMessage `json:"details"`
	CorrelationID string          `json:"correlationId"`
}

// serve routes a single request through a chi router so URL params resolve.
func serve(h http.HandlerFunc, method, pattern, target, body string, principal *auth.Principal) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), *principal))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      *model.DomainError
		expected int
	}{
		{model.NewValidationError("bad"), http.StatusBadRequest},
		{model.ErrInvalidPaymentMethod, http.StatusBadRequest},
		{model.ErrInvalidQuantity, http.StatusBadRequest},
		{model.ErrInvalidAddress, http.StatusBadRequest},
		{model.ErrEmptyCart, http.StatusBadRequest},
		{model.ErrInsufficientStock, http.StatusBadRequest},
		{model.ErrInvalidTransition, http.StatusBadRequest},
		{model.ErrUnauthenticated, http.StatusUnauthorized},
		{model.ErrForbidden, http.StatusForbidden},
		{model.ErrOrderNotFound, http.StatusNotFound},
		{model.ErrVersionConflict, http.StatusConflict},
		{model.ErrOrderNumberConflict, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err.Kind))
		})
	}
}

func TestWriteError(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Domain error carries code and details", func(t *testing.T) {
		err := model.NewInsufficientStockError(model.InsufficientStockDetails{
			ProductID: "p1", ProductName: "Teapot", Requested: 3, Available: 1,
		})
		w := httptest.NewRecorder()
		writeError(w, httptest.NewRequest(http.MethodPost, "/api/orders", nil), err, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, model.ErrCodeInsufficientStock, env.Code)
		assert.JSONEq(t, `{"productId":"p1","productName":"Teapot","requested":3,"available":1}`, string(env.Details))
	})

	t.Run("Wrapped domain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.Join(errors.New("ctx"), model.ErrOrderNotFound), logger)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeOrderNotFound, decode(t, w).Code)
	})

	t.Run("Infrastructure error is not leaked", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"), logger)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decode(t, w)
		assert.Equal(t, model.ErrCodeInternalError, env.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "Valid", body: `{"productId":"p1","quantity":2}`},
		{name: "Trailing whitespace", body: "{\"productId\":\"p1\",\"quantity\":2}\n"},
		{name: "Unknown field", body: `{"productId":"p1","qty":2}`, wantErr: true},
		{name: "Trailing document", body: `{"productId":"p1"}{"productId":"p2"}`, wantErr: true},
		{name: "Malformed", body: `{"productId":`, wantErr: true},
		{name: "Empty", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.AddCartItemRequest
			err := decodeJSON(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)), &req)

			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "p1", req.ProductID)
		})
	}
}
