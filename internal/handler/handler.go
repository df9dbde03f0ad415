// Package handler exposes the marketplace over HTTP.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bahriwassim/zishop1-sub000/internal/middleware"
	"github.com/bahriwassim/zishop1-sub000/internal/order"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves every route from one store and one order engine.
type Handler struct {
	store  store.Store
	engine *order.Engine
}

// New returns a Handler.
func New(s store.Store, engine *order.Engine) *Handler {
	return &Handler{store: s, engine: engine}
}

// Register mounts the routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)

	auth := e.Group("/auth")
	auth.POST("/clients/register", h.RegisterClient)
	auth.POST("/clients/login", h.LoginClient)
	auth.POST("/staff/login", h.LoginStaff)
	auth.GET("/me", h.Me, middleware.AuthMiddleware)

	api := e.Group("/api")

	api.GET("/workflow", h.Workflow)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/number/:number", h.GetOrderByNumber)
	api.GET("/orders/:id", h.GetOrder)
	api.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	api.POST("/orders/:id/pickup", h.MarkPickedUp)

	api.GET("/hotels", h.ListHotels)
	api.POST("/hotels", h.CreateHotel)
	api.GET("/hotels/code/:code", h.GetHotelByCode)
	api.GET("/hotels/:id", h.GetHotel)
	api.PATCH("/hotels/:id", h.UpdateHotel)
	api.GET("/hotels/:id/merchants", h.ListHotelAssociations)
	api.GET("/hotels/:id/nearby-merchants", h.NearbyMerchants)

	api.GET("/merchants", h.ListMerchants)
	api.POST("/merchants", h.CreateMerchant)
	api.GET("/merchants/:id", h.GetMerchant)
	api.PATCH("/merchants/:id", h.UpdateMerchant)
	api.GET("/merchants/:id/products", h.ListMerchantProducts)
	api.GET("/merchants/:id/hotels", h.ListMerchantAssociations)

	api.GET("/products", h.ListProducts)
	api.POST("/products", h.CreateProduct)
	api.GET("/products/:id", h.GetProduct)
	api.PATCH("/products/:id", h.UpdateProduct)
	api.POST("/products/:id/validate", h.ValidateProduct)
	api.POST("/products/:id/restock", h.RestockProduct)

	api.GET("/hotel-merchants", h.ListAssociations)
	api.POST("/hotel-merchants", h.CreateAssociation)
	api.GET("/hotel-merchants/:id", h.GetAssociation)
	api.PATCH("/hotel-merchants/:id", h.UpdateAssociation)
	api.DELETE("/hotel-merchants/:id", h.DeleteAssociation)

	api.GET("/clients", h.ListClients)
	api.GET("/clients/:id", h.GetClient)
	api.PATCH("/clients/:id", h.UpdateClient)

	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)
	api.GET("/users/:id", h.GetUser)
	api.PATCH("/users/:id", h.UpdateUser)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &order.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return uint(id), nil
}

// parseQueryID reads an optional positive integer query parameter.
func parseQueryID(c echo.Context, name string) (uint, bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false, &order.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return uint(id), true, nil
}

func badRequest(c echo.Context, err error) error {
	logger.FromEcho(c).Warn("Failed to parse request", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
}

// fail writes the response matching err. Backend failures are logged and
// reported without detail.
func fail(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	var (
		validation *order.ValidationError
		notFound   *order.NotFoundError
		short      *order.InsufficientStockError
		transition *order.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validation):
		log.Warn("Rejected request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "field": validation.Field})
	case errors.Is(err, store.ErrInvalidInput):
		log.Warn("Rejected request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &notFound), errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidReference):
		log.Info("Record not found", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &short):
		log.Info("Insufficient stock", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        err.Error(),
			"product_id":   short.ProductID,
			"product_name": short.ProductName,
			"available":    short.Available,
			"requested":    short.Requested,
		})
	case errors.As(err, &transition):
		log.Info("Invalid status transition", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": err.Error(),
			"from":  transition.From,
			"to":    transition.To,
		})
	case errors.Is(err, order.ErrNotDelivered),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrStaleStatus):
		log.Info("Conflicting request", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
