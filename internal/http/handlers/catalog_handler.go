package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jainjy/servo-sub017/internal/catalog"
	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/log"
	"github.com/jainjy/servo-sub017/internal/repos"
	"github.com/jainjy/servo-sub017/internal/services"
	"github.com/jainjy/servo-sub017/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
	Forms   *forms.Registry
}

// filterFromQuery reads category, q and any registered auxiliary
// dimension. Repeated keys form the accepted set of that dimension. The
// returned string names the offending parameter.
func filterFromQuery(c *fiber.Ctx) (domain.FilterState, string) {
	st := domain.DefaultFilterState()
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		v, ok := validate.Label(raw)
		if !ok {
			return st, "category"
		}
		st.ActiveCategory = v
	}
	if raw := strings.TrimSpace(c.Query("q")); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			return st, "q"
		}
		st.SearchQuery = q
	}

	bad := ""
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if bad != "" || !catalog.IsDimension(key) {
			return
		}
		val, ok := validate.Label(string(v))
		if !ok {
			bad = key
			return
		}
		if st.AuxiliaryFilters == nil {
			st.AuxiliaryFilters = map[string][]string{}
		}
		st.AuxiliaryFilters[key] = append(st.AuxiliaryFilters[key], val)
	})
	return st, bad
}

func (h *CatalogHandler) Collections(c *fiber.Ctx) error {
	cols, err := h.Catalog.Collections()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"collections": cols})
}

// List answers the JSON variant of the catalog page.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	col, ok := validate.Slug(c.Params("collection"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "collection"})
		return jsonError(c, fiber.StatusNotFound, "unknown collection")
	}
	st, bad := filterFromQuery(c)
	if bad != "" {
		log.Security(c, "validation.fail", map[string]any{"field": bad})
		return jsonError(c, fiber.StatusBadRequest, "invalid filter: "+bad)
	}
	l, err := h.Catalog.Browse(col, st)
	if errors.Is(err, repos.ErrUnknownCollection) {
		return jsonError(c, fiber.StatusNotFound, "unknown collection")
	}
	if err != nil {
		return err
	}
	return c.JSON(l)
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	ensureSID(c)
	cols, err := h.Catalog.Collections()
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Collections": cols})
}

func (h *CatalogHandler) Page(c *fiber.Ctx) error {
	ensureSID(c)
	col, ok := validate.Slug(c.Params("collection"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection introuvable"})
	}
	st, bad := filterFromQuery(c)
	if bad != "" {
		log.Security(c, "validation.fail", map[string]any{"field": bad})
		st = domain.DefaultFilterState()
		c.Status(fiber.StatusBadRequest)
	}
	l, err := h.Catalog.Browse(col, st)
	if errors.Is(err, repos.ErrUnknownCollection) {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Collection introuvable"})
	}
	if err != nil {
		log.Error(c, "catalog.browse", err, map[string]any{"collection": col})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Impossible de charger le catalogue."})
	}

	var offered []string
	if h.Forms != nil {
		for _, name := range h.Forms.Names() {
			if def, err := h.Forms.Get(name); err == nil && def.Accepts(col) {
				offered = append(offered, name)
			}
		}
	}
	data := fiber.Map{"L": l, "Forms": offered, "Invalid": bad != ""}
	return render(c, "catalog", data)
}
