package users

import (
	"context"
	"fmt"

	"home-kitchen-market/internal/models"
)

// ServiceInterface defines methods for profile and address-book logic.
type ServiceInterface interface {
	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)

	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.GetUserProfile: %w", err)
	}
	return user, nil
}

func (s *Service) UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	user, err := s.repo.Update(ctx, userID, data)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateUserProfile: %w", err)
	}
	return user, nil
}

func (s *Service) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	addrs, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListAddresses: %w", err)
	}
	return addrs, nil
}

func (s *Service) AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error) {
	addr, err := s.repo.AddAddress(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("service.AddAddress: %w", err)
	}
	return addr, nil
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error) {
	addr, err := s.repo.UpdateAddress(ctx, userID, addressID, req)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateAddress: %w", err)
	}
	return addr, nil
}

func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if err := s.repo.DeleteAddress(ctx, userID, addressID); err != nil {
		return fmt.Errorf("service.DeleteAddress: %w", err)
	}
	return nil
}
