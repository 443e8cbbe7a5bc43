package handlers

import (
	"errors"
	"fmt"
	"strings"

	"warehouse/internal/models"
	"warehouse/internal/repositories"
	"warehouse/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// sortColumns maps the sort query parameter to an ORDER BY column.
var sortColumns = map[string]string{
	"id":         models.ColumnID,
	"name":       models.ColumnName,
	"quantity":   models.ColumnQuantity,
	"unit_price": models.ColumnUnitPrice,
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.InventoryService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.InventoryService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Delete("/", h.HandleDeleteAllProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/sell", h.HandleSellProduct)
}

// HandleGetProducts lists products, optionally filtered by supplier or stock
// and sorted by a column. A leading "-" on sort orders descending.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var (
		conditions []string
		q          services.Query
	)
	if supplier := c.Query("supplier"); supplier != "" {
		conditions = append(conditions, models.ColumnSupplierName+" = ?")
		q.SelectionArgs = append(q.SelectionArgs, supplier)
	}
	if c.QueryBool("in_stock") {
		conditions = append(conditions, models.ColumnQuantity+" > 0")
	}
	q.Selection = strings.Join(conditions, " AND ")

	if sort := c.Query("sort"); sort != "" {
		direction := "ASC"
		if strings.HasPrefix(sort, "-") {
			direction = "DESC"
			sort = sort[1:]
		}
		column, ok := sortColumns[sort]
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Cannot sort by %q", sort),
			})
		}
		q.SortOrder = column + " " + direction
	}

	rs, err := h.service.List(c.UserContext(), models.PathProducts, q)
	if err != nil {
		return h.fail(c, err, "Could not retrieve products")
	}

	products := make([]models.Product, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		p, err := models.ProductFromRow(row)
		if err != nil {
			return h.fail(c, err, "Could not read products")
		}
		products = append(products, p)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	res, err := h.service.ResourceType(models.PathProducts + "/" + c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Could not retrieve product")
	}
	return h.respondProduct(c, fiber.StatusOK, res.ID)
}

// HandleCreateProduct validates the JSON body and inserts a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	id, err := h.service.Insert(c.UserContext(), models.Values(payload))
	if err != nil {
		return h.fail(c, err, "Could not create product")
	}
	return h.respondProduct(c, fiber.StatusCreated, id)
}

// HandleUpdateProduct applies the fields present in the JSON body to one
// product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	rows, err := h.service.Update(c.UserContext(), models.PathProducts+"/"+c.Params("id"), models.Values(payload), "", nil)
	if err != nil {
		return h.fail(c, err, "Could not update product")
	}
	return c.JSON(fiber.Map{"rows_affected": rows})
}

// HandleDeleteProduct deletes one product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	rows, err := h.service.Delete(c.UserContext(), models.PathProducts+"/"+c.Params("id"), "", nil)
	if err != nil {
		return h.fail(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{"rows_deleted": rows})
}

// HandleDeleteAllProducts deletes every product.
func (h *ProductHandler) HandleDeleteAllProducts(c *fiber.Ctx) error {
	rows, err := h.service.DeleteAll(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Could not delete products")
	}
	return c.JSON(fiber.Map{"rows_deleted": rows})
}

// HandleSellProduct takes one unit of a product out of stock.
func (h *ProductHandler) HandleSellProduct(c *fiber.Ctx) error {
	res, err := h.service.ResourceType(models.PathProducts + "/" + c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Could not sell product")
	}

	remaining, err := h.service.SellUnit(c.UserContext(), res.ID)
	if err != nil {
		return h.fail(c, err, "Could not sell product")
	}
	return c.JSON(fiber.Map{
		models.ColumnID:       res.ID,
		models.ColumnQuantity: remaining,
	})
}

func (h *ProductHandler) respondProduct(c *fiber.Ctx, status int, id int64) error {
	row, err := h.service.GetByID(c.UserContext(), id, nil)
	if err != nil {
		return h.fail(c, err, "Could not retrieve product")
	}
	if row == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}

	product, err := models.ProductFromRow(row)
	if err != nil {
		return h.fail(c, err, "Could not read product")
	}
	return c.Status(status).JSON(product)
}

// fail maps service errors onto HTTP status codes.
func (h *ProductHandler) fail(c *fiber.Ctx, err error, message string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"field":   validationErr.Field,
			"error":   validationErr.Error(),
		})
	case errors.Is(err, repositories.ErrUnknownColumn):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown product field",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidTarget), errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Product is out of stock",
			"error":   err.Error(),
		})
	}

	h.logger.Error(message, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
