package dto

import "realtime-chat-be/internal/entity"

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	// Identifier is the username or email.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string               `json:"token"`
	User  entity.PublicProfile `json:"user"`
}
