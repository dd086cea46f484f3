package middleware

import (
	"errors"
	"strings"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/service"
	"go-resto-ops/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

var (
	errMissingToken = errors.New("missing authorization token")
	errTokenFormat  = errors.New("invalid authorization format, use: Bearer <token>")
)

// RequireAuth validates the bearer token against the profile's current
// session and stores the resolved Actor in the request locals.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return unauthorized(c, err.Error())
		}

		profile, err := auth.Authenticate(c.UserContext(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrProfileInactive):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Profile is inactive", "category": "forbidden"})
		case errors.Is(err, service.ErrSessionExpired):
			return unauthorized(c, "Session expired (logged in on another device)")
		case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrMissingToken):
			return unauthorized(c, "Invalid or expired token")
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify session", "category": "backend"})
		}

		actor := model.Actor{ID: profile.ID, Role: profile.Role, Name: profile.FullName()}
		c.Locals(actorKey, actor)
		c.Locals("user_id", profile.ID.String())
		c.Locals("user_email", profile.Email)
		return c.Next()
	}
}

// RequireCapability rejects actors whose role may not perform action.
func RequireCapability(action model.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return unauthorized(c, "Missing authorization token")
		}
		if !actor.Can(action) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    "Forbidden: requires '" + string(action) + "' capability",
				"category": "forbidden",
			})
		}
		return c.Next()
	}
}

// ActorFrom returns the actor set by RequireAuth.
func ActorFrom(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(actorKey).(model.Actor)
	return actor, ok
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errTokenFormat
	}
	return parts[1], nil
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg, "category": "unauthorized"})
}
