package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/log"
	"github.com/jainjy/servo-sub017/internal/modal"
	"github.com/jainjy/servo-sub017/internal/services"
	"github.com/jainjy/servo-sub017/internal/validate"
)

type ModalHandler struct {
	Booking *services.BookingService
}

type openBody struct {
	Form       string            `json:"form"`
	Collection string            `json:"collection"`
	ItemID     string            `json:"itemId"`
	Fields     map[string]string `json:"fields"`
}

func modalError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, forms.ErrUnknownForm), errors.Is(err, services.ErrItemNotFound), errors.Is(err, modal.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrFormNotOffered):
		return jsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrModalClosed):
		return jsonError(c, fiber.StatusConflict, err.Error())
	}
	return err
}

func checkFields(c *fiber.Ctx, fields map[string]string) (map[string]string, bool) {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if !validate.FieldName(k) {
			log.Security(c, "validation.fail", map[string]any{"field": k})
			return nil, false
		}
		val, ok := validate.FieldValue(v)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": k})
			return nil, false
		}
		out[k] = val
	}
	return out, true
}

// Open creates and opens a modal for an item of a collection.
func (h *ModalHandler) Open(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var b openBody
	if err := c.BodyParser(&b); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	form, ok1 := validate.Slug(b.Form)
	col, ok2 := validate.Slug(b.Collection)
	item, ok3 := validate.ID(b.ItemID)
	if !ok1 || !ok2 || !ok3 {
		log.Security(c, "validation.fail", map[string]any{"field": "modal.open"})
		return jsonError(c, fiber.StatusBadRequest, "form, collection and itemId are required")
	}
	preset, ok := checkFields(c, b.Fields)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid field")
	}
	snap, err := h.Booking.Open(c.UserContext(), services.OpenRequest{
		SessionID: sid, Form: form, Collection: col, ItemID: item, Fields: preset,
	})
	if err != nil {
		return modalError(c, err)
	}
	log.Info(c, "modal.open", map[string]any{"form": form, "item": item, "modal": snap.ID})
	return c.Status(fiber.StatusCreated).JSON(snap)
}

func (h *ModalHandler) Get(c *fiber.Ctx) error {
	sid := ensureSID(c)
	snap, err := h.Booking.Get(sid, c.Params("id"))
	if err != nil {
		return modalError(c, err)
	}
	return c.JSON(snap)
}

func (h *ModalHandler) UpdateFields(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var body map[string]string
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	fields, ok := checkFields(c, body)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid field")
	}
	snap, err := h.Booking.UpdateFields(sid, c.Params("id"), fields)
	if err != nil {
		return modalError(c, err)
	}
	return c.JSON(snap)
}

func (h *ModalHandler) Submit(c *fiber.Ctx) error {
	sid := ensureSID(c)
	snap, err := h.Booking.Submit(c.UserContext(), sid, c.Params("id"))
	if err != nil {
		return modalError(c, err)
	}
	log.Audit(c, "modal.submit", map[string]any{
		"form": snap.Form, "item": snap.Item.ID, "status": string(snap.State.SubmissionStatus),
	})
	return c.JSON(snap)
}

// Close discards the modal and its form.
func (h *ModalHandler) Close(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Booking.Close(sid, c.Params("id")); err != nil {
		return modalError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
