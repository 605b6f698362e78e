package service

import (
	"context"
	"fmt"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type cartService struct {
	cartRepo repository.CartRepository
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	lines, err := s.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return model.NewCart(lines), nil
}

// AddItem does not check stock; that happens on quantity updates and at checkout.
func (s *cartService) AddItem(ctx context.Context, userID string, req *model.AddCartItemRequest) (*model.CartLine, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		return nil, model.NewValidationError("productId is required")
	}
	if req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	line, err := s.cartRepo.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("product_id", req.ProductID).
		Int("quantity", line.Quantity).
		Msg("item added to cart")
	return line, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) (*model.CartLine, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	line, err := s.cartRepo.UpdateQuantity(ctx, userID, lineID, quantity)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("line_id", lineID.String()).
			Int("quantity", quantity).
			Msg("cart quantity update rejected")
		return nil, err
	}
	return line, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, lineID uuid.UUID) error {
	return s.cartRepo.RemoveItem(ctx, userID, lineID)
}
