package authService

import (
	"errors"
	"time"

	"ReceiptTracker/internal/api/auth"
	contextPkg "ReceiptTracker/pkg/context"
	jwtPkg "ReceiptTracker/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const accessTokenTTL = 30 * time.Minute

func (s *authDomainImpl) Login(c context.Context, req auth.LoginUserRequest) (auth.LoginUserResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.LoginUserResponse{}, err
	}

	user, err := repo.Users.GetByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("Login attempt for unknown email")
			return auth.LoginUserResponse{}, auth.ErrInvalidEmailOrPassword
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user by email")
		return auth.LoginUserResponse{}, err
	}

	if err := s.bcryptUtils.ComparePassword(user.Password, req.Password); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Password comparison failed")
		return auth.LoginUserResponse{}, auth.ErrInvalidEmailOrPassword
	}

	userData := MakeUserData(user)

	token, expired, err := jwtPkg.Sign(userData, accessTokenTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign token")
		return auth.LoginUserResponse{}, err
	}

	return auth.LoginUserResponse{
		AccessToken:      token,
		TokenType:        "bearer",
		ExpiresInMinutes: time.Until(time.Unix(expired, 0)).Minutes(),
	}, nil
}
