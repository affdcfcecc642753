package auth

// LoginRequest carries the credentials for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateAccountRequest carries a new account. Invite is the URI of an
// account creation invite and is required unless open sign up is enabled.
type CreateAccountRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Invite   *string `json:"invite"`
}
