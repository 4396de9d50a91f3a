package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/courtline/court-booking/internal/api/dto"
	"github.com/courtline/court-booking/internal/auth"
	"github.com/courtline/court-booking/internal/service"
	apperrors "github.com/courtline/court-booking/pkg/util/errorutil"
)

// BootstrapHeader carries the shared secret that authorizes token issuance.
const BootstrapHeader = "X-Identity-Bootstrap"

// IdentityHandler issues identity tokens to the presentation layer.
//
// The handler signs whatever user_id it is given, so it must only be reachable
// by a trusted caller such as the chat bot front end. Every request has to
// present the bootstrap secret in BootstrapHeader; an empty secret rejects all
// requests.
type IdentityHandler struct {
	tokens    *auth.TokenManager
	validator *dto.Validator
	bootstrap []byte
}

// NewIdentityHandler constructs handler.
func NewIdentityHandler(tokens *auth.TokenManager, validator *dto.Validator, bootstrapSecret string) *IdentityHandler {
	return &IdentityHandler{tokens: tokens, validator: validator, bootstrap: []byte(bootstrapSecret)}
}

// Issue handles POST /api/identity.
func (h *IdentityHandler) Issue(c *fiber.Ctx) error {
	presented := []byte(c.Get(BootstrapHeader))
	if len(h.bootstrap) == 0 || subtle.ConstantTimeCompare(presented, h.bootstrap) != 1 {
		return apperrors.NewUnauthorized("identity bootstrap secret required")
	}

	var req dto.IdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	token, exp, err := h.tokens.GenerateToken(req.UserID, service.NormalizeDisplayName(req.FirstName), req.Username)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user_id": req.UserID,
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
