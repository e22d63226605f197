package authService

import (
	"time"

	"ReceiptTracker/internal/api/auth"
	"ReceiptTracker/internal/entity"
	contextPkg "ReceiptTracker/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *userDomainImpl) RegisterUser(ctx context.Context, req auth.CreateUserRequest) (auth.UserResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.UserResponse{}, err
	}

	hashedPassword, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return auth.UserResponse{}, err
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return auth.UserResponse{}, err
	}

	user := entity.User{
		ID:       ULID,
		Email:    req.Email,
		Password: hashedPassword,
	}

	if err := repo.Users.CreateUser(ctx, user); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create user")
		return auth.UserResponse{}, err
	}

	return auth.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: time.Now(),
	}, nil
}

func (s *userDomainImpl) GetByID(ctx context.Context, id string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.User{}, err
	}

	user, err := repo.Users.GetByID(ctx, id)
	if err != nil {
		return entity.User{}, err
	}

	return user, nil
}
