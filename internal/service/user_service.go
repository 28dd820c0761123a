package service

import (
	"context"
	"errors"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserDTO, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	profile := &dto.UserDTO{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		AvatarURL: user.AvatarURL,
	}

	// OAuth accounts without an explicit avatar fall back to the provider's.
	if profile.AvatarURL == nil {
		provider, err := uow.UserRepository().FindUserProvider(ctx, specification.UserOwnedBy{UserID: userID})
		if err == nil && provider != nil && provider.AvatarURL != "" {
			profile.AvatarURL = &provider.AvatarURL
		}
	}

	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	user.FullName = req.FullName
	user.UpdatedAt = time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}

	if req.AvatarURL != "" {
		if err := uow.UserRepository().UpdateAvatar(ctx, userID, req.AvatarURL); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}

	return uow.UserRepository().Delete(ctx, userID)
}
