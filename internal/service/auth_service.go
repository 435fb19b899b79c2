package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DrewDeMo/finance/internal/auth"
	"github.com/DrewDeMo/finance/internal/middleware"
)

// AuthService exposes registration, login and session refresh over HTTP.
type AuthService struct {
	authenticator auth.Authenticator
	users         auth.UserStorage
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users auth.UserStorage, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register mounts the auth routes. Register/login/refresh are public;
// the current-user route requires a session.
func (s *AuthService) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", s.handleRegister)
	g.POST("/login", s.handleLogin)
	g.POST("/refresh", s.handleRefresh)
	g.GET("/me", s.handleCurrentUser, requireAuth)
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthService) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.DisplayName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and display name are required")
	}

	user, err := s.authenticator.Register(c.Request().Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
		}
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	return c.JSON(http.StatusCreated, sessionResponse{
		User: userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt,
		},
		Token: token,
	})
}

func (s *AuthService) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, auth.ErrInvalidCredentials.Error())
	}

	user, err := s.authenticator.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return c.JSON(http.StatusOK, sessionResponse{
		User: userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt,
		},
		Token: token,
	})
}

// handleRefresh is the single session-refresh retry: a client whose request
// bounced with "session_expired" exchanges its token here exactly once; if
// this also fails the client must log in again.
func (s *AuthService) handleRefresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	token, err := s.jwtManager.Refresh(req.Token)
	if err != nil {
		s.logger.Warn("Session refresh rejected", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired, log in again")
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *AuthService) handleCurrentUser(c echo.Context) error {
	userID := middleware.GetUserID(c)

	user, err := s.users.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		s.logger.Error("Failed to load current user", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
	}

	return c.JSON(http.StatusOK, userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	})
}
