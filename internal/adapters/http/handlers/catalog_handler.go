package handlers

import (
	"errors"

	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/core/services"
	"microcredit-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler lists tenants and their loan products
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListTenants lists the active tenants
// @Summary List tenants
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/tenants [get]
func (h *CatalogHandler) ListTenants(c *fiber.Ctx) error {
	tenants, err := h.catalog.ListTenants(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to list tenants")
	}
	return response.Success(c, "Tenants retrieved successfully", tenants)
}

// ListProducts lists the active products of a tenant
// @Summary List products
// @Tags Catalog
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/tenants/{tenantId}/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.UserContext(), c.Params("tenantId"))
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return response.NotFound(c, "Entidad financiera no encontrada")
		}
		return response.InternalServerError(c, "Failed to list products")
	}
	return response.Success(c, "Products retrieved successfully", products)
}
