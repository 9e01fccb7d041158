package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "stockhub/internal/log"
	"stockhub/internal/services"
	"stockhub/internal/validate"
)

type InventoryHandler struct {
	Transfers *services.TransferService
	Alerts    *services.AlertService
	Inv       *services.InventoryService
}

// POST /api/inventory/transfer
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var req services.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "transfer", services.MsgInvalidTransfer)
	}
	req.IdempotencyKey = strings.TrimSpace(c.Get("Idempotency-Key"))

	fields := map[string]any{
		"source":      req.SourceStoreID,
		"destination": req.DestinationStoreID,
		"product":     req.ProductID,
		"qty":         req.Quantity,
	}
	res, err := h.Transfers.Transfer(c.UserContext(), req)
	if err != nil {
		return writeError(c, "inventory.transfer", err, fields)
	}
	fields["reference"] = res.Movement.Reference
	applog.Audit(c, "inventory.transfer", fields)
	return c.JSON(res)
}

// GET /api/inventory/alerts
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	rows, err := h.Alerts.ListLowStock(c.UserContext())
	if err != nil {
		return writeError(c, "inventory.alerts", err, nil)
	}
	return c.JSON(rows)
}

// GET /api/stores/:storeId/inventory
func (h *InventoryHandler) StoreInventory(c *fiber.Ctx) error {
	storeID, ok := validate.ID(c.Params("storeId"))
	if !ok {
		return badRequest(c, "storeId", "Invalid store id.")
	}
	rows, err := h.Inv.StoreInventory(c.UserContext(), storeID)
	if err != nil {
		return writeError(c, "inventory.store", err, map[string]any{"store": storeID})
	}
	return c.JSON(rows)
}

func pairParams(c *fiber.Ctx) (storeID, productID int64, ok bool) {
	if storeID, ok = validate.ID(c.Params("storeId")); !ok {
		return 0, 0, false
	}
	productID, ok = validate.ID(c.Params("productId"))
	return storeID, productID, ok
}

// PUT /api/stores/:storeId/inventory/:productId/minstock, body is a bare integer
func (h *InventoryHandler) SetMinStock(c *fiber.Ctx) error {
	storeID, productID, ok := pairParams(c)
	if !ok {
		return badRequest(c, "pair", "Invalid store or product id.")
	}
	var minStock *int
	if err := c.BodyParser(&minStock); err != nil || minStock == nil {
		return badRequest(c, "minStock", "Invalid minimum stock value.")
	}
	fields := map[string]any{"store": storeID, "product": productID, "min_stock": *minStock}
	if err := h.Inv.SetMinStock(c.UserContext(), storeID, productID, *minStock); err != nil {
		return writeError(c, "inventory.minstock", err, fields)
	}
	applog.Audit(c, "inventory.minstock", fields)
	return c.JSON(fiber.Map{"message": services.MsgMinStockUpdated})
}

type quantityBody struct {
	Quantity int `json:"quantity"`
}

// POST /api/stores/:storeId/inventory/:productId/receive
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	return h.book(c, "inventory.receive", h.Inv.Receive)
}

// POST /api/stores/:storeId/inventory/:productId/issue
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	return h.book(c, "inventory.issue", h.Inv.Issue)
}

type bookFunc = func(ctx context.Context, storeID, productID int64, qty int) (services.StockReceipt, error)

func (h *InventoryHandler) book(c *fiber.Ctx, action string, fn bookFunc) error {
	storeID, productID, ok := pairParams(c)
	if !ok {
		return badRequest(c, "pair", "Invalid store or product id.")
	}
	var body quantityBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "quantity", services.MsgInvalidQuantity)
	}
	fields := map[string]any{"store": storeID, "product": productID, "qty": body.Quantity}
	res, err := fn(c.UserContext(), storeID, productID, body.Quantity)
	if err != nil {
		return writeError(c, action, err, fields)
	}
	fields["reference"] = res.Movement.Reference
	applog.Audit(c, action, fields)
	return c.JSON(res)
}

// GET /api/movements
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	storeID, okS := validate.OptionalID(c.Query("storeId"))
	productID, okP := validate.OptionalID(c.Query("productId"))
	page, size, okPage := validate.Page(c.Query("page"), c.Query("pageSize"), 20)
	if !okS || !okP || !okPage {
		return badRequest(c, "movements", "Invalid movement query.")
	}
	res, err := h.Inv.Movements(c.UserContext(), services.MovementQuery{
		StoreID:   storeID,
		ProductID: productID,
		Type:      strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return writeError(c, "inventory.movements", err, nil)
	}
	return c.JSON(res)
}

// GET /reports/low-stock
func (h *InventoryHandler) Report(c *fiber.Ctx) error {
	rows, err := h.Alerts.ListLowStock(c.UserContext())
	if err != nil {
		applog.Error(c, "report.low_stock.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the report"})
	}
	return render(c, "low_stock", fiber.Map{"Rows": rows})
}
