package auth

import "github.com/team-rf/roster/internal/user"

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required" example:"Anna"`
	LastName  string `json:"last_name" binding:"required" example:"Keller"`
	Email     string `json:"email" binding:"required,email" example:"anna@example.com"`
	Password  string `json:"password" binding:"required,min=8,max=72" example:"password123"`
	Role      string `json:"role,omitempty" binding:"omitempty,oneof=admin trainer player parent"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"anna@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=NewPassword"`
}

type AuthResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         user.UserResponse `json:"user"`
}
