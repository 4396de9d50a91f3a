package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/courtline/court-booking/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal is the caller identity carried by a verified token.
type Principal struct {
	UserID    int64
	FirstName string
	Username  string
}

// AuthMiddleware resolves an optional bearer token into a Principal.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware. A nil manager makes it a pass-through.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle attaches the principal when a bearer token is present. Requests
// without a token continue anonymously; a malformed or invalid token is rejected.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" || m.tokens == nil {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{
		UserID:    claims.UserID,
		FirstName: claims.FirstName,
		Username:  claims.Username,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the verified caller, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
