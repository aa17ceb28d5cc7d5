package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jainjy/servo-sub017/internal/geo"
	"github.com/jainjy/servo-sub017/internal/log"
	"github.com/jainjy/servo-sub017/internal/validate"
)

type GeocodeHandler struct {
	Geo     *geo.Client
	Suggest *geo.Suggester
}

func (h *GeocodeHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid address")
	}
	p, err := h.Geo.Search(c.UserContext(), q)
	if errors.Is(err, geo.ErrNoResult) {
		return jsonError(c, fiber.StatusNotFound, "address not found")
	}
	if err != nil {
		log.Error(c, "geocode.search", err, nil)
		return jsonError(c, fiber.StatusBadGateway, "geocoder unavailable")
	}
	return c.JSON(p)
}

func (h *GeocodeHandler) Reverse(c *fiber.Ctx) error {
	lat, ok1 := validate.Coord(c.Query("lat"), 90)
	lon, ok2 := validate.Coord(c.Query("lon"), 180)
	if !ok1 || !ok2 {
		return jsonError(c, fiber.StatusBadRequest, "invalid coordinates")
	}
	a, err := h.Geo.Reverse(c.UserContext(), lat, lon)
	if errors.Is(err, geo.ErrNoResult) {
		return jsonError(c, fiber.StatusNotFound, "no address at this position")
	}
	if err != nil {
		log.Error(c, "geocode.reverse", err, nil)
		return jsonError(c, fiber.StatusBadGateway, "geocoder unavailable")
	}
	return c.JSON(a)
}

type addressInput struct {
	Text string `json:"text"`
}

// Input feeds the address field of the location picker. The lookup runs
// once typing settles; the answer is read from Suggestion.
func (h *GeocodeHandler) Input(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var b addressInput
	if err := c.BodyParser(&b); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	text := ""
	if b.Text != "" {
		q, ok := validate.Q(b.Text)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "text"})
			return jsonError(c, fiber.StatusBadRequest, "invalid address")
		}
		text = q
	}
	h.Suggest.Input(sid, text)
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *GeocodeHandler) Suggestion(c *fiber.Ctx) error {
	sid := ensureSID(c)
	s, ok := h.Suggest.Latest(sid)
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(s)
}
