package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/domain"
)

type userService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a UserService backed by the given repository.
func NewUserService(userRepo domain.UserRepository) domain.UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, firstName, lastName *string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if firstName != nil {
		name := strings.TrimSpace(*firstName)
		if name == "" {
			return nil, fmt.Errorf("%w: first_name cannot be empty", domain.ErrInvalidInput)
		}
		user.FirstName = name
	}
	if lastName != nil {
		name := strings.TrimSpace(*lastName)
		if name == "" {
			return nil, fmt.Errorf("%w: last_name cannot be empty", domain.ErrInvalidInput)
		}
		user.LastName = name
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
