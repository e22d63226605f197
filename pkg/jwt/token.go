package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ReceiptTracker/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

func Sign(Data map[string]interface{}, ExpiredAt time.Duration) (string, int64, error) {
	expiredAt := time.Now().Add(ExpiredAt).Unix()

	JWTSecretKey := os.Getenv("JWT_ACCESS_TOKEN_SECRET")
	if JWTSecretKey == "" {
		return "", 0, fmt.Errorf("JWT_ACCESS_TOKEN_SECRET not set")
	}

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt
	claims["authorization"] = true

	for i, v := range Data {
		claims[i] = v
	}

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(JWTSecretKey))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, errors.New("empty Authorization header")
	}

	parts := strings.Split(header, "Bearer ")
	if len(parts) != 2 {
		return nil, errors.New("invalid Authorization format")
	}

	accessToken := strings.TrimSpace(parts[1])
	if accessToken == "" {
		return nil, errors.New("empty token")
	}

	JWTSecretKey := os.Getenv(secretEnvKey)
	if JWTSecretKey == "" {
		return nil, errors.New("JWT secret not configured")
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(JWTSecretKey), nil
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to parse JWT token")
		return nil, err
	}

	return token, nil
}

func GetUserLoginData(c *fiber.Ctx) (entity.UserLoginData, error) {
	userData := c.Locals("user")

	user, ok := userData.(entity.UserLoginData)
	if !ok {
		return entity.UserLoginData{}, fiber.ErrUnauthorized
	}

	return user, nil
}
