package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bahriwassim/zishop1-sub000/internal/geo"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/order"
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListHotels returns every hotel.
func (h *Handler) ListHotels(c echo.Context) error {
	hotels, err := h.store.ListHotels(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, hotels)
}

// CreateHotel registers a hotel. It starts active unless the body says otherwise.
func (h *Handler) CreateHotel(c echo.Context) error {
	req := model.Hotel{IsActive: true}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	hotel, err := h.store.CreateHotel(c.Request().Context(), &req)
	if err != nil {
		return fail(c, err)
	}
	logger.FromEcho(c).Info("Hotel created", zap.Uint("hotel_id", hotel.ID), zap.String("code", hotel.Code))
	return c.JSON(http.StatusCreated, hotel)
}

// GetHotel returns one hotel.
func (h *Handler) GetHotel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	hotel, err := h.store.GetHotel(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

// GetHotelByCode resolves the code printed on a hotel's QR card.
func (h *Handler) GetHotelByCode(c echo.Context) error {
	hotel, err := h.store.GetHotelByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

// UpdateHotel patches a hotel.
func (h *Handler) UpdateHotel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var patch model.HotelPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}
	hotel, err := h.store.UpdateHotel(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

// NearbyMerchants lists merchants within ?radius= km of the hotel.
func (h *Handler) NearbyMerchants(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	radius := geo.DefaultRadiusKm
	if raw := c.QueryParam("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return fail(c, &order.ValidationError{Field: "radius", Reason: "must be a number"})
		}
	}

	merchants, err := geo.NearbyMerchants(c.Request().Context(), h.store, id, radius)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, merchants)
}

// ListMerchants returns every merchant.
func (h *Handler) ListMerchants(c echo.Context) error {
	merchants, err := h.store.ListMerchants(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, merchants)
}

// CreateMerchant registers a merchant. It starts active unless the body says otherwise.
func (h *Handler) CreateMerchant(c echo.Context) error {
	req := model.Merchant{IsActive: true}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	merchant, err := h.store.CreateMerchant(c.Request().Context(), &req)
	if err != nil {
		return fail(c, err)
	}
	logger.FromEcho(c).Info("Merchant created", zap.Uint("merchant_id", merchant.ID))
	return c.JSON(http.StatusCreated, merchant)
}

// GetMerchant returns one merchant.
func (h *Handler) GetMerchant(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	merchant, err := h.store.GetMerchant(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, merchant)
}

// UpdateMerchant patches a merchant.
func (h *Handler) UpdateMerchant(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var patch model.MerchantPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}
	merchant, err := h.store.UpdateMerchant(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, merchant)
}

// ListMerchantProducts returns the products of a merchant.
func (h *Handler) ListMerchantProducts(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if _, err := h.store.GetMerchant(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	products, err := h.store.ListProductsByMerchant(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// ListProducts returns every product.
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.store.ListProducts(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct adds a product pending operator validation.
func (h *Handler) CreateProduct(c echo.Context) error {
	var req model.Product
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	req.ValidationStatus = model.ValidationPending
	req.RejectionReason = nil
	req.ValidatedBy = nil
	req.ValidatedAt = nil

	product, err := h.store.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		return fail(c, err)
	}
	logger.FromEcho(c).Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.Uint("merchant_id", product.MerchantID))
	return c.JSON(http.StatusCreated, product)
}

// GetProduct returns one product.
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	product, err := h.store.GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct patches the merchant-editable product fields.
func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var patch model.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}
	patch.ValidationStatus = nil
	patch.RejectionReason = nil
	patch.ValidatedBy = nil
	patch.ValidatedAt = nil

	product, err := h.store.UpdateProduct(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

type validateProductRequest struct {
	Status          model.ValidationStatus `json:"status"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	ValidatedBy     uint                   `json:"validated_by"`
}

// ValidateProduct records an operator's approval or rejection.
func (h *Handler) ValidateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req validateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Status != model.ValidationApproved && req.Status != model.ValidationRejected {
		return fail(c, &order.ValidationError{Field: "status", Reason: "must be approved or rejected"})
	}
	if req.ValidatedBy == 0 {
		return fail(c, &order.ValidationError{Field: "validated_by", Reason: "is required"})
	}

	ctx := c.Request().Context()
	validator, err := h.store.GetUser(ctx, req.ValidatedBy)
	if err != nil {
		return fail(c, err)
	}
	if validator.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only operators can validate products"})
	}

	now := time.Now()
	patch := model.ProductPatch{
		ValidationStatus: &req.Status,
		ValidatedBy:      &validator.ID,
		ValidatedAt:      &now,
	}
	if req.Status == model.ValidationRejected {
		patch.RejectionReason = req.RejectionReason
	}

	product, err := h.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return fail(c, err)
	}
	logger.FromEcho(c).Info("Product validated",
		zap.Uint("product_id", product.ID),
		zap.String("status", string(product.ValidationStatus)),
		zap.Uint("validated_by", validator.ID))
	return c.JSON(http.StatusOK, product)
}

// RestockProduct adds stock to a product.
func (h *Handler) RestockProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Quantity <= 0 {
		return fail(c, &order.ValidationError{Field: "quantity", Reason: "must be a positive integer"})
	}

	product, err := h.store.RestockProduct(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	logger.FromEcho(c).Info("Product restocked",
		zap.Uint("product_id", product.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock", product.Stock))
	return c.JSON(http.StatusOK, product)
}

// ListAssociations returns every hotel-merchant link.
func (h *Handler) ListAssociations(c echo.Context) error {
	links, err := h.store.ListHotelMerchants(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

// ListHotelAssociations returns the active links of a hotel.
func (h *Handler) ListHotelAssociations(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	links, err := h.store.ListHotelMerchantsByHotel(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

// ListMerchantAssociations returns the active links of a merchant.
func (h *Handler) ListMerchantAssociations(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	links, err := h.store.ListHotelMerchantsByMerchant(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

// CreateAssociation offers a merchant to a hotel's guests.
func (h *Handler) CreateAssociation(c echo.Context) error {
	var req struct {
		HotelID    uint `json:"hotel_id"`
		MerchantID uint `json:"merchant_id"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	link, err := h.store.CreateHotelMerchant(c.Request().Context(), req.HotelID, req.MerchantID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, link)
}

// GetAssociation returns one hotel-merchant link.
func (h *Handler) GetAssociation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	link, err := h.store.GetHotelMerchant(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, link)
}

// UpdateAssociation toggles a hotel-merchant link.
func (h *Handler) UpdateAssociation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var patch model.HotelMerchantPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}
	link, err := h.store.UpdateHotelMerchant(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, link)
}

// DeleteAssociation removes a hotel-merchant link.
func (h *Handler) DeleteAssociation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.store.DeleteHotelMerchant(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
