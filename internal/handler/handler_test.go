package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bahriwassim/zishop1-sub000/internal/commission"
	"github.com/bahriwassim/zishop1-sub000/internal/handler"
	"github.com/bahriwassim/zishop1-sub000/internal/middleware"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/order"
	"github.com/bahriwassim/zishop1-sub000/internal/store/memory"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	e        *echo.Echo
	store    *memory.Store
	hotel    *model.Hotel
	merchant *model.Merchant
	product  *model.Product
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	h, err := s.CreateHotel(ctx, &model.Hotel{
		Name:      "Hotel Lumiere",
		Code:      "LUM01",
		Latitude:  decimal.RequireFromString("48.8566"),
		Longitude: decimal.RequireFromString("2.3522"),
		IsActive:  true,
	})
	require.NoError(t, err)
	m, err := s.CreateMerchant(ctx, &model.Merchant{
		Name:      "Boulangerie",
		Latitude:  decimal.RequireFromString("48.8611"),
		Longitude: decimal.RequireFromString("2.3522"),
		IsActive:  true,
		IsOpen:    true,
	})
	require.NoError(t, err)
	p, err := s.CreateProduct(ctx, &model.Product{
		MerchantID:  m.ID,
		Name:        "Croissant",
		Price:       decimal.RequireFromString("2.50"),
		IsAvailable: true,
		Stock:       3,
	})
	require.NoError(t, err)

	engine, err := order.NewEngine(s, commission.DefaultRates)
	require.NoError(t, err)

	e := echo.New()
	e.Use(middleware.RequestIDMiddleware)
	handler.New(s, engine).Register(e)

	return &server{e: e, store: s, hotel: h, merchant: m, product: p}
}

func (s *server) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *server) orderBody(quantity int, total string) string {
	raw, _ := json.Marshal(map[string]any{
		"hotel_id":      s.hotel.ID,
		"merchant_id":   s.merchant.ID,
		"customer_name": "Alice Martin",
		"customer_room": "204",
		"items":         []map[string]any{{"product_id": s.product.ID, "quantity": quantity}},
		"total_amount":  total,
	})
	return string(raw)
}

func TestCreateOrder(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/orders", s.orderBody(2, "5.00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var o model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, model.StatusPending, o.Status)
	assert.True(t, strings.HasPrefix(o.OrderNumber, "ZS-"))
	assert.True(t, decimal.RequireFromString("3.75").Equal(o.MerchantCommission))

	rec = s.do(t, http.MethodGet, "/api/orders/number/"+o.OrderNumber, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDKey))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/orders", s.orderBody(4, "10.00"))
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Croissant", body["product_name"])
	assert.EqualValues(t, 3, body["available"])
	assert.EqualValues(t, 4, body["requested"])
	assert.EqualValues(t, s.product.ID, body["product_id"])
}

func TestCreateOrderValidation(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/orders", s.orderBody(0, "0"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["field"])

	rec = s.do(t, http.MethodPost, "/api/orders", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderStatusTransitions(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/orders", s.orderBody(1, "2.50"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var o model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	path := "/api/orders/" + jsonNumber(o.ID)

	rec = s.do(t, http.MethodPatch, path+"/status", `{"status":"delivered"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "pending", body["from"])
	assert.Equal(t, "delivered", body["to"])

	rec = s.do(t, http.MethodPost, path+"/pickup", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, path+"/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode(t, rec)["status"])

	rec = s.do(t, http.MethodPatch, path+"/status", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderNotFound(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/orders/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/orders/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/orders/number/ZS-NOPE", "").Code)
}

func TestListOrdersFilters(t *testing.T) {
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/orders", s.orderBody(1, "2.50")).Code)

	var orders []model.Order
	rec := s.do(t, http.MethodGet, "/api/orders?hotel_id="+jsonNumber(s.hotel.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)

	rec = s.do(t, http.MethodGet, "/api/orders?merchant_id=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNearbyMerchants(t *testing.T) {
	s := newServer(t)
	_, err := s.store.CreateMerchant(context.Background(), &model.Merchant{
		Name:      "Far Away",
		Latitude:  decimal.RequireFromString("48.9000"),
		Longitude: decimal.RequireFromString("2.3522"),
		IsActive:  true,
	})
	require.NoError(t, err)

	path := "/api/hotels/" + jsonNumber(s.hotel.ID) + "/nearby-merchants"

	var nearby []map[string]any
	rec := s.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nearby))
	require.Len(t, nearby, 1)
	assert.Equal(t, "Boulangerie", nearby[0]["name"])
	assert.InDelta(t, 0.5, nearby[0]["distance_km"], 0.05)

	rec = s.do(t, http.MethodGet, path+"?radius=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nearby))
	assert.Len(t, nearby, 2)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path+"?radius=far", "").Code)
}

func TestWorkflow(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/api/workflow", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var wf order.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))
	assert.Len(t, wf.States, len(model.OrderStatuses))
	assert.Equal(t, int64(75), wf.Commission["merchant"])
	assert.Equal(t, int64(20), wf.Commission["operator"])
	assert.Equal(t, int64(5), wf.Commission["hotel"])
}

func TestHotelCodeConflict(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/hotels", `{"name":"Copy","code":"LUM01","is_active":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/hotels/code/LUM01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hotel Lumiere", decode(t, rec)["name"])
}

func TestCreatedEntitiesDefaultToActive(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/hotels", `{"name":"Hotel Opera","code":"OPE02"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["is_active"])

	rec = s.do(t, http.MethodPost, "/api/hotels", `{"name":"Closed","code":"CLO03","is_active":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, false, decode(t, rec)["is_active"])

	rec = s.do(t, http.MethodPost, "/api/merchants",
		`{"name":"Fromagerie","latitude":"48.8570","longitude":"2.3522","is_open":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["is_active"])

	var nearby []map[string]any
	rec = s.do(t, http.MethodGet, "/api/hotels/"+jsonNumber(s.hotel.ID)+"/nearby-merchants", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nearby))
	names := make([]any, 0, len(nearby))
	for _, m := range nearby {
		names = append(names, m["name"])
	}
	assert.Contains(t, names, "Fromagerie")
}

func TestProductLifecycle(t *testing.T) {
	s := newServer(t)
	admin, err := s.store.CreateUser(context.Background(), &model.User{
		Username: "operator", Password: "secret", Role: model.RoleAdmin,
	})
	require.NoError(t, err)

	body := `{"merchant_id":` + jsonNumber(s.merchant.ID) + `,"name":"Tarte","price":"4.20","stock":2,"validation_status":"approved"}`
	rec := s.do(t, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "pending", created["validation_status"])
	path := "/api/products/" + jsonNumber(uint(created["id"].(float64)))

	rec = s.do(t, http.MethodPost, path+"/validate", `{"status":"maybe","validated_by":`+jsonNumber(admin.ID)+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path+"/validate", `{"status":"approved","validated_by":`+jsonNumber(admin.ID)+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", decode(t, rec)["validation_status"])

	rec = s.do(t, http.MethodPost, path+"/restock", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, decode(t, rec)["stock"])

	rec = s.do(t, http.MethodPost, path+"/restock", `{"quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssociations(t *testing.T) {
	s := newServer(t)
	body := `{"hotel_id":` + jsonNumber(s.hotel.ID) + `,"merchant_id":` + jsonNumber(s.merchant.ID) + `}`

	rec := s.do(t, http.MethodPost, "/api/hotel-merchants", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := uint(decode(t, rec)["id"].(float64))

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/hotel-merchants", body).Code)

	rec = s.do(t, http.MethodGet, "/api/hotels/"+jsonNumber(s.hotel.ID)+"/merchants", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var links []model.HotelMerchant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &links))
	assert.Len(t, links, 1)

	path := "/api/hotel-merchants/" + jsonNumber(id)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, "").Code)
}

func TestClientRegisterLoginMe(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/auth/clients/register",
		`{"email":"Guest@Example.com","password":"hunter22","first_name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode(t, rec)
	assert.Equal(t, "guest@example.com", registered["email"])
	assert.NotContains(t, registered, "password")

	rec = s.do(t, http.MethodPost, "/auth/clients/register", `{"email":"guest@example.com","password":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/clients/login", `{"email":"guest@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/clients/login", `{"email":"guest@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	rec = s.do(t, http.MethodGet, "/auth/me", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	account, _ := me["account"].(map[string]any)
	assert.Equal(t, "guest@example.com", account["email"])

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/auth/me", "").Code)
}

func TestStaffLogin(t *testing.T) {
	s := newServer(t)
	hotelID := s.hotel.ID

	rec := s.do(t, http.MethodPost, "/api/users",
		`{"username":"frontdesk","password":"secret","role":"hotel","hotel_id":`+jsonNumber(hotelID)+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/users", `{"username":"broken","password":"secret","role":"hotel"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/staff/login", `{"username":"frontdesk","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec)["token"].(string)

	rec = s.do(t, http.MethodGet, "/auth/me", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	claims, _ := decode(t, rec)["claims"].(map[string]any)
	assert.Equal(t, "staff", claims["kind"])
	assert.Equal(t, "hotel", claims["role"])
	assert.EqualValues(t, hotelID, claims["hotel_id"])

	rec = s.do(t, http.MethodPost, "/auth/staff/login", `{"username":"nobody","password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func jsonNumber(id uint) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
