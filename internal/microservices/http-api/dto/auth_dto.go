package dto

// Data Transfer Objects for authentication requests and responses

// SignupRequest: payload for requesting a confirmation code
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Email    string `json:"email" binding:"required,max=254,email"`
}

// SignupResponse echoes the accepted identity; the code itself only goes out by mail.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code for a token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse: response payload after successful code exchange
type TokenResponse struct {
	Token string `json:"token"`
}

// LoginRequest: password login for accounts bootstrapped with createsuperuser
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
