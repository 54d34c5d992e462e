// Package models defines the client-side data model: the authentication
// state, transfer-session records and the wire DTOs of the backend API.
package models

// AuthState is the process-wide authentication state. Values are replaced as
// a whole on every transition; an empty string means "none".
type AuthState struct {
	// IsLoading is true during the initial load and while a login is in flight.
	IsLoading bool
	// AccessToken is the opaque bearer credential issued at login.
	AccessToken string
	// UserID is derived from AccessToken. It is set iff AccessToken is set
	// and well-formed.
	UserID string
	// MustChangePassword forces the password-change flow before anything else.
	MustChangePassword bool
}

// Authenticated reports whether a credential is held.
func (s AuthState) Authenticated() bool {
	return s.AccessToken != ""
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	AccessToken        string    `json:"access_token"`
	TokenType          string    `json:"token_type,omitempty"`
	ExpiresAt          Timestamp `json:"expires_at"`
	MustChangePassword bool      `json:"must_change_password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	PasswordConfirm  string `json:"password_confirm"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

type ForgotQuestionRequest struct {
	Email string `json:"email"`
}

type ForgotQuestionResponse struct {
	SecurityQuestion string `json:"security_question"`
}

type ForgotResetRequest struct {
	Email          string `json:"email"`
	SecurityAnswer string `json:"security_answer"`
}

type ForgotResetResponse struct {
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}
