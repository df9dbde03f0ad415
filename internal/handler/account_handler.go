package handler

import (
	"errors"
	"net/http"

	"github.com/bahriwassim/zishop1-sub000/internal/middleware"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/order"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/bahriwassim/zishop1-sub000/pkg/jwtutil"
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"github.com/bahriwassim/zishop1-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type registerClientRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type clientLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type staffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Role       model.Role `json:"role"`
	HotelID    *uint      `json:"hotel_id,omitempty"`
	MerchantID *uint      `json:"merchant_id,omitempty"`
}

// RegisterClient creates a guest account
func (h *Handler) RegisterClient(c echo.Context) error {
	log := logger.FromEcho(c)

	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Email == "" {
		return fail(c, &order.ValidationError{Field: "email", Reason: "is required"})
	}
	if req.Password == "" {
		return fail(c, &order.ValidationError{Field: "password", Reason: "is required"})
	}

	client, err := h.store.CreateClient(c.Request().Context(), &model.Client{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  true,
	})
	if err != nil {
		return fail(c, err)
	}

	prometheus.RegisterCounter.Inc()
	log.Info("Client registered", zap.Uint("client_id", client.ID))
	return c.JSON(http.StatusCreated, client)
}

// LoginClient exchanges guest credentials for a token
func (h *Handler) LoginClient(c echo.Context) error {
	log := logger.FromEcho(c)

	var req clientLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	client, err := h.store.AuthenticateClient(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.loginFailed(c, err)
	}

	token, err := jwtutil.GenerateToken(jwtutil.Claims{
		Kind:      jwtutil.KindClient,
		AccountID: client.ID,
		Login:     client.Email,
	})
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate token"})
	}

	prometheus.RecordLogin(jwtutil.KindClient)
	log.Info("Client logged in", zap.Uint("client_id", client.ID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "client": client})
}

// LoginStaff exchanges staff credentials for a token
func (h *Handler) LoginStaff(c echo.Context) error {
	log := logger.FromEcho(c)

	var req staffLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	user, err := h.store.AuthenticateUser(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.loginFailed(c, err)
	}

	token, err := jwtutil.GenerateToken(jwtutil.Claims{
		Kind:       jwtutil.KindStaff,
		AccountID:  user.ID,
		Login:      user.Username,
		Role:       string(user.Role),
		HotelID:    user.HotelID,
		MerchantID: user.MerchantID,
	})
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate token"})
	}

	prometheus.RecordLogin(jwtutil.KindStaff)
	log.Info("Staff logged in", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

func (h *Handler) loginFailed(c echo.Context, err error) error {
	if !errors.Is(err, store.ErrNotFound) {
		return fail(c, err)
	}
	logger.FromEcho(c).Warn("Invalid credentials")
	prometheus.RecordAuthError("invalid_credentials")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
}

// Me returns the token claims and the account they name
func (h *Handler) Me(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := c.Request().Context()
	var (
		account any
		err     error
	)
	switch claims.Kind {
	case jwtutil.KindClient:
		account, err = h.store.GetClient(ctx, claims.AccountID)
	case jwtutil.KindStaff:
		account, err = h.store.GetUser(ctx, claims.AccountID)
	default:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown token subject"})
	}
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"claims": claims, "account": account})
}

// ListClients returns every guest account
func (h *Handler) ListClients(c echo.Context) error {
	clients, err := h.store.ListClients(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClient returns one guest account
func (h *Handler) GetClient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	client, err := h.store.GetClient(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateClient patches a guest account
func (h *Handler) UpdateClient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var patch model.ClientPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}
	client, err := h.store.UpdateClient(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// ListUsers returns every staff account
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.store.ListUsers(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser registers a staff account
func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Password == "" {
		return fail(c, &order.ValidationError{Field: "password", Reason: "is required"})
	}

	user, err := h.store.CreateUser(c.Request().Context(), &model.User{
		Username:   req.Username,
		Password:   req.Password,
		Role:       req.Role,
		HotelID:    req.HotelID,
		MerchantID: req.MerchantID,
	})
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("Staff account created",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return c.JSON(http.StatusCreated, user)
}

// GetUser returns one staff account
func (h *Handler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	user, err := h.store.GetUser(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser patches a staff account
func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var patch model.UserPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, err)
	}
	user, err := h.store.UpdateUser(c.Request().Context(), id, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
