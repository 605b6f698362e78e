package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderNumberAttempts bounds order number generation per placement.
const orderNumberAttempts = 2

// NewOrderNumber returns the epoch milliseconds followed by six random digits.
func NewOrderNumber() string {
	return fmt.Sprintf("%d%06d", time.Now().UnixMilli(), rand.Intn(1_000_000))
}

// OrderServiceOption customises an order service.
type OrderServiceOption func(*orderService)

// WithOrderNumbers replaces the order number generator.
func WithOrderNumbers(fn func() string) OrderServiceOption {
	return func(s *orderService) {
		s.orderNumber = fn
	}
}

// WithPlacementRecorder reports placement outcomes to r.
func WithPlacementRecorder(r PlacementRecorder) OrderServiceOption {
	return func(s *orderService) {
		s.recorder = r
	}
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	orderNumber func() string
	recorder    PlacementRecorder
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	logger zerolog.Logger,
	opts ...OrderServiceOption,
) OrderService {
	s := &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		orderNumber: NewOrderNumber,
		recorder:    nopRecorder{},
		logger:      logger.With().Str("service", "order").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errorCode returns the machine-readable code carried by err.
func errorCode(err error) string {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return model.ErrCodeInternalError
}

// PlaceOrder checks every precondition before opening the transaction, then
// re-reads the cart inside it so prices and stock are current at commit.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, req *model.PlaceOrderRequest) (order *model.Order, err error) {
	defer func() {
		if err != nil {
			s.recorder.PlacementFailed(errorCode(err))
			return
		}
		s.recorder.OrderPlaced()
	}()

	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		return nil, model.NewValidationError("paymentMethod is required")
	}
	if !model.SettingsFromContext(ctx).AcceptsPaymentMethod(req.PaymentMethod) {
		s.logger.Warn().Str("payment_method", req.PaymentMethod).Msg("payment method not accepted")
		return nil, model.ErrInvalidPaymentMethod
	}

	address, err := s.addressRepo.GetByID(ctx, userID, req.AddressID)
	if err != nil {
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	if address == nil {
		s.logger.Warn().
			Str("user_id", userID).
			Str("address_id", req.AddressID.String()).
			Msg("address not owned by user")
		return nil, model.ErrInvalidAddress
	}

	lines, err := s.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}
	if err := checkStock(lines); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("checkout blocked by stock")
		return nil, err
	}

	order, err = s.placeInTx(ctx, userID, address, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", userID).
		Int("item_count", len(order.Items)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order placed")

	return order, nil
}

// checkStock returns InsufficientStock for the first line exceeding stock.
func checkStock(lines []model.CartLine) error {
	for _, line := range lines {
		if line.Product == nil || line.Product.Stock < line.Quantity {
			d := model.InsufficientStockDetails{
				ProductID: line.ProductID,
				Requested: line.Quantity,
			}
			if line.Product != nil {
				d.ProductName = line.Product.Name
				d.Available = line.Product.Stock
			}
			return model.NewInsufficientStockError(d)
		}
	}
	return nil
}

func (s *orderService) placeInTx(ctx context.Context, userID string, address *model.Address, paymentMethod string) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	lines, err := s.cartRepo.ListLinesTx(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	now := time.Now().UTC()
	order = &model.Order{
		ID:            uuid.New(),
		UserID:        userID,
		AddressID:     &address.ID,
		TotalAmount:   decimal.Zero,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	items := make([]model.OrderItem, len(lines))
	lineIDs := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		lineIDs[i] = line.ID
		productID := line.ProductID
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Price:       line.Product.Price,
		}
		order.TotalAmount = order.TotalAmount.Add(items[i].Subtotal())
	}

	if err = s.createWithNumber(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	// Stable product order keeps row locks acquired in the same sequence
	// across concurrent placements.
	slices.SortFunc(lines, func(a, b model.CartLine) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
	for _, line := range lines {
		if err = s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err = s.cartRepo.DeleteLines(ctx, tx, userID, lineIDs); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	order.Address = address
	order.Items = items
	return order, nil
}

// createWithNumber inserts the order under a savepoint so that an order
// number collision can be retried without aborting tx.
func (s *orderService) createWithNumber(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order.OrderNumber = s.orderNumber()

		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}

		err = s.orderRepo.CreateOrder(ctx, sp, order)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return fmt.Errorf("failed to release savepoint: %w", err)
			}
			return nil
		}

		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("failed to roll back savepoint: %w", rbErr)
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return fmt.Errorf("failed to create order: %w", err)
		}

		s.recorder.OrderNumberCollision()
		s.logger.Warn().
			Int("attempt", attempt).
			Str("order_number", order.OrderNumber).
			Msg("order number collision")
	}

	s.logger.Error().Str("order_id", order.ID.String()).Msg("order number retries exhausted")
	return model.ErrOrderNumberConflict
}

// ListForUser returns the user's orders, newest first.
func (s *orderService) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetForUser hides other users' orders behind NotFound.
func (s *orderService) GetForUser(ctx context.Context, userID string, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) AdminList(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.NewValidationError("invalid order status: %s", *filter.Status)
	}
	filter.OrderNumber = strings.TrimSpace(filter.OrderNumber)
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) AdminGet(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// AdminUpdate locks the order, validates the status transition and writes
// only the provided fields.
func (s *orderService) AdminUpdate(ctx context.Context, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.updateInTx(ctx, id, req); err != nil {
		return nil, err
	}

	return s.AdminGet(ctx, id)
}

func (s *orderService) updateInTx(ctx context.Context, id uuid.UUID, req *model.UpdateOrderRequest) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	current, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return model.ErrOrderNotFound
	}

	if req.Status != nil {
		if err = current.Status.ValidateTransition(*req.Status); err != nil {
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("from", string(current.Status)).
				Str("to", string(*req.Status)).
				Msg("invalid status transition")
			return err
		}
	}

	if err = s.orderRepo.UpdateFields(ctx, tx, id, req); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order updated by admin")
	return nil
}
