package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/queue-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated staff operator.
type Principal struct {
	Username string
}

// StaffMiddleware validates bearer tokens against the configured operator.
type StaffMiddleware struct {
	tokens   *TokenManager
	username string
}

// NewStaffMiddleware constructs middleware.
func NewStaffMiddleware(tokens *TokenManager, username string) *StaffMiddleware {
	return &StaffMiddleware{tokens: tokens, username: username}
}

// Handle enforces authentication for staff routes.
func (m *StaffMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.Username != m.username {
		return apperrors.NewUnauthorized("unknown operator")
	}

	c.Locals(principalKey, &Principal{Username: claims.Username})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated operator.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
