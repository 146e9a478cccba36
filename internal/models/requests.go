package models

// RegisterRequest is the body of the register screen.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,basic_email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Name            string `json:"name" validate:"omitempty,max=100"`
}

// LoginRequest is the body of the login screen.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
