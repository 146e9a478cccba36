package handlers

import (
	"gamereview/internal/middleware"
	"gamereview/internal/models"
	"gamereview/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the register, login and session screens.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    services.NewValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
// sessionMiddleware runs only in front of /me, so a stale Authorization
// header never blocks register or login.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, sessionMiddleware fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/session", h.HandleCheckSession)
	authRoutes.Get("/me", sessionMiddleware, h.HandleMe)
}

// HandleRegister handles new user registration. It does not log the user in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := services.ValidateStruct(h.validate, req); err != nil {
		return respondError(c, "Validation failed", err)
	}

	user, err := h.authService.Register(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return respondError(c, "Could not register user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"name":      user.Name,
			"createdAt": user.CreatedAt,
		},
	})
}

// HandleLogin starts a session and returns a bearer token for it.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := services.ValidateStruct(h.validate, req); err != nil {
		return respondError(c, "Validation failed", err)
	}

	session, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, "Could not log in", err)
	}
	token, err := h.authService.IssueToken(session)
	if err != nil {
		return respondError(c, "Could not issue session token", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"session": session,
	})
}

// HandleLogout clears the persisted session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext()); err != nil {
		return respondError(c, "Could not log out", err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleCheckSession reports whether the device has a logged-in session.
func (h *AuthHandler) HandleCheckSession(c *fiber.Ctx) error {
	ok, session := h.authService.CheckSession(c.UserContext())
	resp := fiber.Map{"authenticated": ok}
	if ok {
		resp["user"] = session
	}
	return c.JSON(resp)
}

// HandleMe returns the caller's session and the name to greet them with.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return respondError(c, "Login required", services.ErrUnauthenticated)
	}
	return c.JSON(fiber.Map{
		"session":     session,
		"displayName": session.DisplayName(),
	})
}
