package dto

import "github.com/google/uuid"

type UserDTO struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type UpdateProfileRequest struct {
	FullName  string `json:"full_name" validate:"required"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}
