package handler

import (
	"net/http"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/order"
	"github.com/labstack/echo/v4"
)

// CreateOrder places a guest order.
func (h *Handler) CreateOrder(c echo.Context) error {
	var req order.CreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	o, err := h.engine.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// GetOrder returns one order.
func (h *Handler) GetOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	o, err := h.engine.GetOrder(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// GetOrderByNumber returns the order with a public number.
func (h *Handler) GetOrderByNumber(c echo.Context) error {
	o, err := h.engine.GetOrderByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ListOrders lists orders, filtered by hotel_id, merchant_id or client_id.
func (h *Handler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		orders []model.Order
		err    error
	)
	hotelID, byHotel, err := parseQueryID(c, "hotel_id")
	if err != nil {
		return fail(c, err)
	}
	merchantID, byMerchant, err := parseQueryID(c, "merchant_id")
	if err != nil {
		return fail(c, err)
	}
	clientID, byClient, err := parseQueryID(c, "client_id")
	if err != nil {
		return fail(c, err)
	}

	switch {
	case byHotel:
		orders, err = h.store.ListOrdersByHotel(ctx, hotelID)
	case byMerchant:
		orders, err = h.store.ListOrdersByMerchant(ctx, merchantID)
	case byClient:
		orders, err = h.store.ListOrdersByClient(ctx, clientID)
	default:
		orders, err = h.store.ListOrders(ctx)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus moves an order along the workflow.
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req order.StatusUpdate
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	o, err := h.engine.UpdateStatus(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// MarkPickedUp records the guest collecting a delivered order.
func (h *Handler) MarkPickedUp(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	o, err := h.engine.MarkPickedUp(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Workflow describes the order states and the commission split.
func (h *Handler) Workflow(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.Workflow())
}
