package http

// UserCreatedResponse is the external view of a freshly provisioned account.
// Hash, salt and activation token stay server-side.
type UserCreatedResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
