package models

// User represents a user in the database
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"createdAt"`
}

// CredentialsRequest represents the request body for POST /login and POST /register
// Example: {"username": "alice", "password": "s3cret"}
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CurrentUserResponse represents the response for GET /get_current_user.
// A nil Username means the caller is not authenticated.
// Example response: {"username": "alice"}
type CurrentUserResponse struct {
	Username *string `json:"username"`
}

// LoggedIn reports whether the response names a user
func (r CurrentUserResponse) LoggedIn() bool {
	return r.Username != nil && *r.Username != ""
}
