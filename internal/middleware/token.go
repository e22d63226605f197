package middleware

import (
	"strings"

	"ReceiptTracker/internal/entity"
	jwtPkg "ReceiptTracker/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

type tokenMiddleware struct {
}

func newTokenMiddleware() *tokenMiddleware {
	return &tokenMiddleware{}
}

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")

	if authHeader == "" {
		m.log.WithFields(logrus.Fields{
			"path": ctx.Path(),
		}).Warn("Authorization header is missing")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		m.log.WithFields(logrus.Fields{
			"path": ctx.Path(),
		}).Warn("Authorization header format is invalid")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, AccessTokenSecret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Token verification failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.Warn("Invalid token claims")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	id, idOK := claims["id"].(string)
	email, emailOK := claims["email"].(string)
	if !idOK || !emailOK || id == "" || email == "" {
		m.log.Warn("Token claims are missing required fields")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	user := entity.UserLoginData{
		ID:    id,
		Email: email,
	}
	ctx.Locals("user", user)

	return ctx.Next()
}
