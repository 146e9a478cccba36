package models

// Session is the single active authenticated-user record.
type Session struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	LoggedIn  bool   `json:"loggedIn"`
	SessionID string `json:"sessionId,omitempty"` // changes on every login; tokens carry it
}

// NewSession builds a logged-in session for the given user.
func NewSession(user *User) *Session {
	return &Session{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.DisplayName(),
		LoggedIn: true,
	}
}

// Active reports whether s is a non-nil, logged-in session.
func (s *Session) Active() bool {
	return s != nil && s.LoggedIn && s.UserID != ""
}

// DisplayName returns the session name or the local part of the email.
func (s *Session) DisplayName() string {
	return displayName(s.Name, s.Email)
}
