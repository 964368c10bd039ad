package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/aduanatrack/core/internal/application/services"
	"github.com/aduanatrack/core/internal/domain/entities"
	"github.com/aduanatrack/core/internal/infrastructure/config"
	"github.com/aduanatrack/core/internal/infrastructure/logger"
)

// DirectoryHandler serves the fixed seed sets and the user-switch
// session. Users and locations are never created at runtime.
type DirectoryHandler struct {
	jwtConfig config.JWTConfig
	logger    *logger.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(jwtConfig config.JWTConfig, logger *logger.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// ListUsers returns the fixed maintenance-team roster
func (h *DirectoryHandler) ListUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, entities.SeedUsers())
}

// ListLocations returns the fixed customs-facility set
func (h *DirectoryHandler) ListLocations(c echo.Context) error {
	return c.JSON(http.StatusOK, entities.SeedLocations())
}

// SessionRequest selects which seed user is treated as current
type SessionRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// SessionResponse carries the selected user and an identification token
type SessionResponse struct {
	User  entities.User `json:"user"`
	Token string        `json:"token"`
}

// SwitchUser issues a session token naming a seed user. The token only
// identifies the current user for display and logging; it grants nothing,
// since switching user has no authorization effect on any operation.
func (h *DirectoryHandler) SwitchUser(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	users := entities.SeedUsers()
	var user *entities.User
	for i := range users {
		if users[i].ID == req.UserID {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"iss":  h.jwtConfig.Issuer,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(h.jwtConfig.ExpiresIn).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtConfig.Secret))
	if err != nil {
		h.logger.Errorw("Session token signing failed", "error", err, "user_id", user.ID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	h.logger.Infow("Current user switched", "user_id", user.ID, "name", user.Name)
	return c.JSON(http.StatusOK, SessionResponse{User: *user, Token: token})
}

// SessionContext decodes an optional bearer session token and exposes the
// current user to downstream logging. The token only identifies: a missing,
// malformed or expired token never rejects the request, and no operation
// changes behavior based on who the current user is.
func SessionContext(jwtConfig config.JWTConfig, appLogger *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return next(c)
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(jwtConfig.Secret), nil
			})
			if err != nil {
				appLogger.Warnw("Invalid session token", "error", err, "ip", c.RealIP())
				return next(c)
			}

			if sub, ok := claims["sub"].(string); ok {
				c.Set("user", sub)
			}
			if name, ok := claims["name"].(string); ok {
				c.Set("user_name", name)
			}

			return next(c)
		}
	}
}

// EventsHandler streams collection-change notifications over SSE
type EventsHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(taskService *services.TaskService, logger *logger.Logger) *EventsHandler {
	return &EventsHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// Stream pushes a full collection snapshot after every mutation until the
// client disconnects. Slow consumers skip intermediate snapshots rather
// than backing up the store.
func (h *EventsHandler) Stream(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	updates := make(chan []entities.Task, 1)
	cancel := h.taskService.Subscribe(func(snapshot []entities.Task) {
		select {
		case updates <- snapshot:
		default:
		}
	})
	defer cancel()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot := <-updates:
			data, err := json.Marshal(snapshot)
			if err != nil {
				h.logger.Errorw("Encode event snapshot failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
