package service

import (
	"context"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type addressService struct {
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
}

// NewAddressService creates a new address book service.
func NewAddressService(addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
	}
}

func (s *addressService) List(ctx context.Context, userID string) ([]model.Address, error) {
	return s.addressRepo.List(ctx, userID)
}

func (s *addressService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) Create(ctx context.Context, userID string, req *model.AddressRequest) (*model.Address, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	address := &model.Address{ID: uuid.New(), UserID: userID}
	req.Apply(address)

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("address_id", address.ID.String()).
		Bool("is_default", address.IsDefault).
		Msg("address created")
	return address, nil
}

func (s *addressService) Update(ctx context.Context, userID string, id uuid.UUID, req *model.AddressRequest) (*model.Address, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	address := &model.Address{ID: id, UserID: userID}
	req.Apply(address)

	ok, err := s.addressRepo.Update(ctx, address)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return s.addressRepo.Delete(ctx, userID, id)
}
