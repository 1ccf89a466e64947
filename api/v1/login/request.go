package login

// LoginRequest is the POST /login body. Shape rules are enforced by the
// login service so that every entry point shares them
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
