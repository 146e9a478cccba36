package models

import (
	"strings"
	"time"
)

// User represents a registered account on this device.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email" validate:"required,basic_email"`
	Password  string    `json:"password" validate:"required,min=6"` // plain text unless bcrypt hashing is enabled
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName returns the user's name, falling back to the local part of the email.
func (u User) DisplayName() string {
	return displayName(u.Name, u.Email)
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
