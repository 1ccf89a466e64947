package login

import "accmanager-api/internal/tokenissuer"

// LoginResponse is returned on success
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ErrorResponse carries upstream diagnostics
type ErrorResponse struct {
	Message string `json:"message"`
}

// NewLoginResponse copies the issued pair unchanged
func NewLoginResponse(pair tokenissuer.TokenPair) LoginResponse {
	return LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
