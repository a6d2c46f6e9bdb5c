package dto

import "github.com/festivaz/web-gateway/internal/domain"

// LoginRequest payload for the account login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries the Google Identity credential.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// RegisterRequest payload for customer registration.
type RegisterRequest struct {
	domain.CustomerRegistration
	ConfirmPassword string `json:"confirmPassword"`
}

// AdminLoginRequest payload for the admin console.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember *bool  `json:"remember"`
}

// LoginResponse tells the browser where to go next.
type LoginResponse struct {
	Redirect string            `json:"redirect"`
	Role     string            `json:"role,omitempty"`
	User     domain.CachedUser `json:"user,omitempty"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	LoggedIn bool              `json:"logged_in"`
	Role     string            `json:"role,omitempty"`
	User     domain.CachedUser `json:"user,omitempty"`
}

// PageResponse describes the page a navigation resolved to.
type PageResponse struct {
	Section string `json:"section"`
	Page    string `json:"page"`
	Role    string `json:"role,omitempty"`
	Title   string `json:"title,omitempty"`
}

// RegistrationReceipt acknowledges a sign-up that awaits review.
type RegistrationReceipt struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
