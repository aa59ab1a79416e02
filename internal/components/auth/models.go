package auth

import "github.com/google/uuid"

type (
	User struct {
		ID           uuid.UUID `json:"id"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
	}

	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		UserID   uuid.UUID `json:"user_id"`
		Username string    `json:"username"`
	}
)
