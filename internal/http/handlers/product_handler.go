package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "stockhub/internal/log"
	"stockhub/internal/services"
	"stockhub/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products?category&minPrice&maxPrice&stock&page&pageSize
func (h *ProductHandler) List(c *fiber.Ctx) error {
	minPrice, ok1 := validate.Decimal(c.Query("minPrice"))
	maxPrice, ok2 := validate.Decimal(c.Query("maxPrice"))
	stock, ok3 := validate.Int(c.Query("stock"))
	page, size, ok4 := validate.Page(c.Query("page"), c.Query("pageSize"), 10)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return badRequest(c, "products.query", "Invalid product query.")
	}
	res, err := h.Catalog.ListProducts(c.UserContext(), services.ProductQuery{
		Category: strings.TrimSpace(c.Query("category")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Stock:    stock,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return writeError(c, "products.list", err, nil)
	}
	return c.JSON(res)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "product", "Invalid product id.")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, "products.get", err, map[string]any{"product": id})
	}
	return c.JSON(p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "product", "Invalid product body.")
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return writeError(c, "products.create", err, nil)
	}
	applog.Audit(c, "products.create", map[string]any{"product": p.ID, "sku": p.SKU})
	c.Location("/api/products/" + strconv.FormatInt(p.ID, 10))
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "product", "Invalid product id.")
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "product", "Invalid product body.")
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, "products.update", err, map[string]any{"product": id})
	}
	applog.Audit(c, "products.update", map[string]any{"product": id})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "product", "Invalid product id.")
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return writeError(c, "products.delete", err, map[string]any{"product": id})
	}
	applog.Audit(c, "products.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}
