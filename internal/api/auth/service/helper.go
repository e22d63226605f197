package authService

import (
	"ReceiptTracker/internal/entity"
)

func MakeUserData(user entity.User) map[string]interface{} {
	return map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
	}
}
