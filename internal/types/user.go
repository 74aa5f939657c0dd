package types

// AuthenticatedUser is the verified caller stashed in the request context
// by the auth middleware.
type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
