package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/log"
	"github.com/jainjy/servo-sub017/internal/services"
	"github.com/jainjy/servo-sub017/internal/validate"
)

type IdentityHandler struct {
	Identity *services.IdentityService
}

type signInBody struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// Put stores the token and profile handed over by the login flow.
func (h *IdentityHandler) Put(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var b signInBody
	if err := c.BodyParser(&b); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	for field, v := range map[string]string{"firstName": b.FirstName, "lastName": b.LastName, "phone": b.Phone, "email": b.Email} {
		if _, ok := validate.FieldValue(v); !ok || len(v) > 200 {
			log.Security(c, "validation.fail", map[string]any{"field": field})
			return jsonError(c, fiber.StatusBadRequest, "invalid "+field)
		}
	}
	err := h.Identity.SignIn(c.UserContext(), sid, domain.StoredIdentity{
		Token: b.Token, Email: b.Email, FirstName: b.FirstName, LastName: b.LastName, Phone: b.Phone,
	})
	if errors.Is(err, services.ErrMissingToken) {
		return jsonError(c, fiber.StatusBadRequest, "token is required")
	}
	if err != nil {
		return err
	}
	log.Audit(c, "identity.signin", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *IdentityHandler) Delete(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Identity.SignOut(c.UserContext(), sid); err != nil {
		return err
	}
	log.Audit(c, "identity.signout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// Get reports what the session has stored, without the token.
func (h *IdentityHandler) Get(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, err := h.Identity.Current(c.UserContext(), sid)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"authenticated": id.Authenticated(),
		"email":         id.Email,
		"firstName":     id.FirstName,
		"lastName":      id.LastName,
		"phone":         id.Phone,
	})
}
