package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "stockhub/internal/log"
	"stockhub/internal/services"
	"stockhub/internal/validate"
)

type StoreHandler struct {
	Catalog *services.CatalogService
}

func (h *StoreHandler) List(c *fiber.Ctx) error {
	page, size, ok := validate.Page(c.Query("page"), c.Query("pageSize"), 10)
	if !ok {
		return badRequest(c, "stores.query", services.MsgInvalidPage)
	}
	res, err := h.Catalog.ListStores(c.UserContext(), page, size)
	if err != nil {
		return writeError(c, "stores.list", err, nil)
	}
	return c.JSON(res)
}

func (h *StoreHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "store", "Invalid store id.")
	}
	st, err := h.Catalog.GetStore(c.UserContext(), id)
	if err != nil {
		return writeError(c, "stores.get", err, map[string]any{"store": id})
	}
	return c.JSON(st)
}

func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var in services.StoreInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "store", "Invalid store body.")
	}
	st, err := h.Catalog.CreateStore(c.UserContext(), in)
	if err != nil {
		return writeError(c, "stores.create", err, nil)
	}
	applog.Audit(c, "stores.create", map[string]any{"store": st.ID})
	c.Location("/api/stores/" + strconv.FormatInt(st.ID, 10))
	return c.Status(fiber.StatusCreated).JSON(st)
}

func (h *StoreHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "store", "Invalid store id.")
	}
	var in services.StoreInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "store", "Invalid store body.")
	}
	st, err := h.Catalog.UpdateStore(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, "stores.update", err, map[string]any{"store": id})
	}
	applog.Audit(c, "stores.update", map[string]any{"store": id})
	return c.JSON(st)
}

func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "store", "Invalid store id.")
	}
	if err := h.Catalog.DeleteStore(c.UserContext(), id); err != nil {
		return writeError(c, "stores.delete", err, map[string]any{"store": id})
	}
	applog.Audit(c, "stores.delete", map[string]any{"store": id})
	return c.SendStatus(fiber.StatusNoContent)
}
