package authService

import (
	"context"

	"ReceiptTracker/internal/api/auth"
	authRepository "ReceiptTracker/internal/api/auth/repository"
	"ReceiptTracker/internal/entity"
	"ReceiptTracker/pkg/bcrypt"
	"ReceiptTracker/pkg/utils"

	"github.com/sirupsen/logrus"
)

type AuthService interface {
	User() UserDomain
	Auth() AuthDomain
	GetRepository() authRepository.Repository
}

type UserDomain interface {
	RegisterUser(c context.Context, req auth.CreateUserRequest) (auth.UserResponse, error)
	GetByID(c context.Context, id string) (entity.User, error)
}

type AuthDomain interface {
	Login(c context.Context, req auth.LoginUserRequest) (auth.LoginUserResponse, error)
}

type authService struct {
	log            *logrus.Logger
	authRepository authRepository.Repository
	bcryptUtils    bcrypt.IBcrypt
	utils          utils.IUtils

	userDomain UserDomain
	authDomain AuthDomain
}

func (a *authService) User() UserDomain {
	return a.userDomain
}

func (a *authService) Auth() AuthDomain {
	return a.authDomain
}

func (a *authService) GetRepository() authRepository.Repository {
	return a.authRepository
}

type userDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	bcryptUtils bcrypt.IBcrypt
	utils       utils.IUtils
}

type authDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	bcryptUtils bcrypt.IBcrypt
}

func New(log *logrus.Logger,
	authRepo authRepository.Repository,
	bcryptUtils bcrypt.IBcrypt,
	utils utils.IUtils,
) AuthService {
	return &authService{
		log:            log,
		authRepository: authRepo,
		bcryptUtils:    bcryptUtils,
		utils:          utils,

		userDomain: &userDomainImpl{log: log, repo: authRepo, bcryptUtils: bcryptUtils, utils: utils},
		authDomain: &authDomainImpl{log: log, repo: authRepo, bcryptUtils: bcryptUtils},
	}
}
