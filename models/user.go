package models

import "time"

type Role string

const (
	RoleClient   Role = "client"
	RoleEngineer Role = "engineer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleEngineer, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`            // empty for Firebase-managed accounts
	FCMToken     string    `json:"-"`            // push token of the last registered device
	AuthProvider string    `json:"authProvider"` // "local" or "firebase"
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required"`
	Phone       string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type DeviceTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}
