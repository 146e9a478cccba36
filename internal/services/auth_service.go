package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gamereview/internal/models"
	"gamereview/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AuthConfig configures an AuthService.
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Passwords     PasswordHasher
}

// AuthService is the account store: registered users plus the active session.
type AuthService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	passwords   PasswordHasher
	jwtSecret   []byte
	tokenDurat  time.Duration
	validate    *validator.Validate
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessionRepo repositories.SessionRepository, cfg AuthConfig) *AuthService {
	if cfg.Passwords == nil {
		cfg.Passwords = PlainPasswords{}
	}
	if cfg.TokenDuration <= 0 {
		cfg.TokenDuration = 24 * time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwords:   cfg.Passwords,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenDurat:  cfg.TokenDuration,
		validate:    NewValidator(),
		now:         time.Now,
	}
}

// SetClock replaces the time source used for creation timestamps and tokens.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// Register validates and stores a new user. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	user := &models.User{
		Email:    email,
		Password: password,
		Name:     name,
	}
	if err := ValidateStruct(s.validate, user); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s': %w", email, ErrDuplicateEmail)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, storageError("failed to load users", err)
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	user.ID = uuid.New().String()
	user.Password = hashed
	user.Name = user.DisplayName()
	user.CreatedAt = s.now().UTC()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageError("failed to register user", err)
	}
	log.Printf("Registered user %s", user.ID)
	return user, nil
}

// Login checks the credentials and, on success, overwrites the persisted session.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("failed to load users", err)
	}
	if !s.passwords.Matches(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	session := models.NewSession(user)
	session.SessionID = uuid.New().String()
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, storageError("failed to start session", err)
	}
	return session, nil
}

// Logout clears the persisted session. It is idempotent.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessionRepo.Clear(ctx); err != nil {
		return storageError("failed to log out", err)
	}
	return nil
}

// CheckSession reports whether a logged-in session is persisted.
func (s *AuthService) CheckSession(ctx context.Context) (bool, *models.Session) {
	session := s.CurrentUser(ctx)
	if session == nil || !session.LoggedIn {
		return false, nil
	}
	return true, session
}

// CurrentUser returns the persisted session payload, or nil.
func (s *AuthService) CurrentUser(ctx context.Context) *models.Session {
	session, err := s.sessionRepo.Get(ctx)
	if err != nil {
		log.Printf("Error reading session: %v", err)
		return nil
	}
	return session
}

// IssueToken signs session into a bearer token.
func (s *AuthService) IssueToken(session *models.Session) (string, error) {
	if !session.Active() {
		return "", ErrUnauthenticated
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": session.UserID,
		"email":   session.Email,
		"name":    session.Name,
		"sid":     session.SessionID,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses a bearer token back into the session it was issued for.
func (s *AuthService) ValidateToken(tokenString string) (*models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	sid, _ := claims["sid"].(string)
	return &models.Session{UserID: userID, Email: email, Name: name, LoggedIn: true, SessionID: sid}, nil
}

// Authenticate validates a bearer token and requires it to belong to the
// persisted session. Tokens issued before a logout or a later login are rejected.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Session, error) {
	claimed, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	current := s.CurrentUser(ctx)
	if !current.Active() || current.SessionID == "" ||
		current.SessionID != claimed.SessionID || current.UserID != claimed.UserID {
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	}
	return current, nil
}
