package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bahriwassim/zishop1-sub000/internal/commission"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/notify"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/bahriwassim/zishop1-sub000/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	orders  []*model.Order
	changes []notify.StatusChange
	err     error
}

func (r *recorder) NotifyNewOrder(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
	return r.err
}

func (r *recorder) NotifyStatusChange(_ context.Context, c notify.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return r.err
}

type env struct {
	engine   *Engine
	store    *memory.Store
	notes    *recorder
	hotel    *model.Hotel
	merchant *model.Merchant
	client   *model.Client
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	h, err := s.CreateHotel(ctx, &model.Hotel{Name: "Hotel Lumiere", Code: "LUM01", IsActive: true})
	require.NoError(t, err)
	m, err := s.CreateMerchant(ctx, &model.Merchant{Name: "Boulangerie", IsActive: true, IsOpen: true})
	require.NoError(t, err)
	c, err := s.CreateClient(ctx, &model.Client{Email: "guest@example.com", Password: "pw", IsActive: true})
	require.NoError(t, err)

	notes := &recorder{}
	e, err := NewEngine(s, commission.DefaultRates, WithNotifier(notes))
	require.NoError(t, err)

	return &env{engine: e, store: s, notes: notes, hotel: h, merchant: m, client: c}
}

func (v *env) product(t *testing.T, name string, price string, stock int) *model.Product {
	t.Helper()
	p, err := v.store.CreateProduct(context.Background(), &model.Product{
		MerchantID:  v.merchant.ID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
		Stock:       stock,
	})
	require.NoError(t, err)
	return p
}

func (v *env) request(total string, items ...Item) CreateRequest {
	amount := decimal.RequireFromString(total)
	return CreateRequest{
		HotelID:      v.hotel.ID,
		MerchantID:   v.merchant.ID,
		CustomerName: "Alice Martin",
		CustomerRoom: "204",
		Items:        items,
		TotalAmount:  &amount,
	}
}

func (v *env) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := v.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestCreateOrderDecrementsStockUntilExhausted(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)

	_, err := v.engine.CreateOrder(ctx, v.request("5.00", Item{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	_, err = v.engine.CreateOrder(ctx, v.request("5.00", Item{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.Equal(t, 1, v.stock(t, p.ID))

	_, err = v.engine.CreateOrder(ctx, v.request("5.00", Item{ProductID: p.ID, Quantity: 2}))
	var short *InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, p.ID, short.ProductID)
	assert.Equal(t, "Croissant", short.ProductName)
	assert.Equal(t, 1, short.Available)
	assert.Equal(t, 2, short.Requested)
	assert.Contains(t, err.Error(), "Croissant")
	assert.Equal(t, 1, v.stock(t, p.ID))

	orders, err := v.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestCreateOrderAttachesCommissionAndPricing(t *testing.T) {
	v := setup(t)
	p := v.product(t, "Macarons", "25.00", 10)

	req := v.request("100.00", Item{ProductID: p.ID, Quantity: 4})
	req.ClientID = &v.client.ID
	o, err := v.engine.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, o.Status)
	assert.True(t, strings.HasPrefix(o.OrderNumber, "ZS-"), o.OrderNumber)
	assert.Equal(t, "75.00", o.MerchantCommission.StringFixed(2))
	assert.Equal(t, "20.00", o.OperatorCommission.StringFixed(2))
	assert.Equal(t, "5.00", o.HotelCommission.StringFixed(2))

	require.Len(t, o.Items, 1)
	assert.Equal(t, "Macarons", o.Items[0].Name)
	assert.True(t, o.Items[0].UnitPrice.Equal(decimal.RequireFromString("25")))
	require.NotNil(t, o.ClientID)
	assert.Equal(t, v.client.ID, *o.ClientID)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestCreateOrderRejectsMalformedRequests(t *testing.T) {
	v := setup(t)
	p := v.product(t, "Croissant", "2.50", 5)
	negative := decimal.RequireFromString("-1")
	fractional := decimal.RequireFromString("10.005")

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		field  string
	}{
		{"no items", func(r *CreateRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *CreateRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative quantity", func(r *CreateRequest) { r.Items[0].Quantity = -3 }, "items[0].quantity"},
		{"missing product", func(r *CreateRequest) { r.Items[0].ProductID = 0 }, "items[0].product_id"},
		{"missing customer", func(r *CreateRequest) { r.CustomerName = "" }, "customer_name"},
		{"missing total", func(r *CreateRequest) { r.TotalAmount = nil }, "total_amount"},
		{"negative total", func(r *CreateRequest) { r.TotalAmount = &negative }, "total_amount"},
		{"sub-cent total", func(r *CreateRequest) { r.TotalAmount = &fractional }, "total_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := v.request("2.50", Item{ProductID: p.ID, Quantity: 1})
			tt.mutate(&req)

			_, err := v.engine.CreateOrder(context.Background(), req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, 5, v.stock(t, p.ID))
		})
	}
}

func TestCreateOrderRejectsUnknownReferences(t *testing.T) {
	v := setup(t)
	p := v.product(t, "Croissant", "2.50", 5)
	unknown := uint(999)

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		entity string
	}{
		{"product", func(r *CreateRequest) { r.Items = append(r.Items, Item{ProductID: unknown, Quantity: 1}) }, "product"},
		{"hotel", func(r *CreateRequest) { r.HotelID = unknown }, "hotel"},
		{"merchant", func(r *CreateRequest) { r.MerchantID = unknown }, "merchant"},
		{"client", func(r *CreateRequest) { r.ClientID = &unknown }, "client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := v.request("2.50", Item{ProductID: p.ID, Quantity: 1})
			tt.mutate(&req)

			_, err := v.engine.CreateOrder(context.Background(), req)
			var nf *NotFoundError
			require.True(t, errors.As(err, &nf), "got %v", err)
			assert.Equal(t, tt.entity, nf.Entity)
			assert.ErrorIs(t, err, store.ErrNotFound)
			assert.Equal(t, 5, v.stock(t, p.ID))
		})
	}
}

func TestCreateOrderSumsQuantitiesPerProduct(t *testing.T) {
	v := setup(t)
	p := v.product(t, "Croissant", "2.50", 3)
	other := v.product(t, "Baguette", "1.20", 3)

	_, err := v.engine.CreateOrder(context.Background(), v.request("10.00",
		Item{ProductID: other.ID, Quantity: 1},
		Item{ProductID: p.ID, Quantity: 2},
		Item{ProductID: p.ID, Quantity: 2},
	))
	var short *InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, 4, short.Requested)
	assert.Equal(t, 3, v.stock(t, p.ID))
	assert.Equal(t, 3, v.stock(t, other.ID))

	o, err := v.engine.CreateOrder(context.Background(), v.request("6.20",
		Item{ProductID: p.ID, Quantity: 1},
		Item{ProductID: other.ID, Quantity: 2},
		Item{ProductID: p.ID, Quantity: 2},
	))
	require.NoError(t, err)
	assert.Len(t, o.Items, 3)
	assert.Equal(t, 0, v.stock(t, p.ID))
	assert.Equal(t, 1, v.stock(t, other.ID))
}

func TestUpdateStatusFollowsWorkflow(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)
	o, err := v.engine.CreateOrder(ctx, v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	confirmed, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	preparing, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusPreparing})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, preparing.Status)
	assert.Equal(t, confirmed.ConfirmedAt.UnixNano(), preparing.ConfirmedAt.UnixNano())

	_, err = v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusDelivered})
	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, model.StatusPreparing, invalid.From)
	assert.Equal(t, model.StatusDelivered, invalid.To)

	current, err := v.engine.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, current.Status)
	assert.Nil(t, current.DeliveredAt)
}

func TestUpdateStatusRejectsSkippingStates(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)
	o, err := v.engine.CreateOrder(ctx, v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusDelivering})
	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "pending")
	assert.Contains(t, err.Error(), "delivering")

	current, err := v.engine.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, current.Status)
	assert.Empty(t, v.notes.changes)
}

func TestDeliveryAndPickup(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)
	o, err := v.engine.CreateOrder(ctx, v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = v.engine.MarkPickedUp(ctx, o.ID)
	assert.ErrorIs(t, err, ErrNotDelivered)

	eta := time.Date(2026, 10, 17, 18, 30, 0, 0, time.UTC)
	notes := "ring twice"
	for _, s := range []model.OrderStatus{model.StatusConfirmed, model.StatusPreparing, model.StatusReady} {
		_, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: s})
		require.NoError(t, err)
	}
	delivering, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{
		Status:            model.StatusDelivering,
		EstimatedDelivery: &eta,
		DeliveryNotes:     &notes,
	})
	require.NoError(t, err)
	require.NotNil(t, delivering.EstimatedDelivery)
	assert.True(t, eta.Equal(*delivering.EstimatedDelivery))
	assert.Equal(t, notes, *delivering.DeliveryNotes)

	delivered, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusDelivered})
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)

	_, err = v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusCancelled})
	var invalid *InvalidTransitionError
	assert.True(t, errors.As(err, &invalid))

	picked, err := v.engine.MarkPickedUp(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, picked.PickedUp)
	require.NotNil(t, picked.PickedUpAt)

	again, err := v.engine.MarkPickedUp(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, picked.PickedUpAt.UnixNano(), again.PickedUpAt.UnixNano())
}

func TestCancelledIsTerminal(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)
	o, err := v.engine.CreateOrder(ctx, v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusCancelled})
	require.NoError(t, err)

	for _, s := range model.OrderStatuses {
		_, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: s})
		var invalid *InvalidTransitionError
		assert.True(t, errors.As(err, &invalid), "cancelled -> %s", s)
	}
	assert.Equal(t, 4, v.stock(t, p.ID))
}

func TestUpdateStatusValidation(t *testing.T) {
	v := setup(t)

	_, err := v.engine.UpdateStatus(context.Background(), 1, StatusUpdate{Status: "shipped"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = v.engine.UpdateStatus(context.Background(), 999, StatusUpdate{Status: model.StatusConfirmed})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "order", nf.Entity)
}

func TestNotifierReceivesEvents(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)

	req := v.request("2.50", Item{ProductID: p.ID, Quantity: 1})
	req.ClientID = &v.client.ID
	o, err := v.engine.CreateOrder(ctx, req)
	require.NoError(t, err)
	_, err = v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusConfirmed})
	require.NoError(t, err)

	require.Len(t, v.notes.orders, 1)
	assert.Equal(t, o.OrderNumber, v.notes.orders[0].OrderNumber)

	require.Len(t, v.notes.changes, 1)
	change := v.notes.changes[0]
	assert.Equal(t, o.ID, change.OrderID)
	assert.Equal(t, v.hotel.ID, change.HotelID)
	assert.Equal(t, v.merchant.ID, change.MerchantID)
	require.NotNil(t, change.ClientID)
	assert.Equal(t, v.client.ID, *change.ClientID)
	assert.Equal(t, model.StatusConfirmed, change.NewStatus)
	assert.Equal(t, Message(model.StatusConfirmed), change.Message)
}

func TestNotifierFailureDoesNotFailOrder(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	v.notes.err = errors.New("transport down")
	p := v.product(t, "Croissant", "2.50", 5)

	o, err := v.engine.CreateOrder(ctx, v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 4, v.stock(t, p.ID))

	updated, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, updated.Status)
}

type panicking struct{}

func (panicking) NotifyNewOrder(context.Context, *model.Order) error {
	panic("transport bug")
}

func (panicking) NotifyStatusChange(context.Context, notify.StatusChange) error {
	panic("transport bug")
}

func TestNotifierPanicDoesNotFailOrder(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)

	e, err := NewEngine(v.store, commission.DefaultRates, WithNotifier(panicking{}))
	require.NoError(t, err)

	var o *model.Order
	require.NotPanics(t, func() {
		o, err = e.CreateOrder(ctx, v.request("5.00", Item{ProductID: p.ID, Quantity: 2}))
	})
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, 3, v.stock(t, p.ID))

	orders, err := v.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	require.NotPanics(t, func() {
		o, err = e.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusConfirmed})
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, o.Status)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	v := setup(t)
	p := v.product(t, "Croissant", "2.50", 7)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.engine.CreateOrder(context.Background(), v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 7, accepted)
	assert.Equal(t, 0, v.stock(t, p.ID))
}

func TestConcurrentTransitionsAreSerialized(t *testing.T) {
	v := setup(t)
	ctx := context.Background()
	p := v.product(t, "Croissant", "2.50", 5)
	o, err := v.engine.CreateOrder(ctx, v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.engine.UpdateStatus(ctx, o.ID, StatusUpdate{Status: model.StatusConfirmed})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Len(t, v.notes.changes, 1)
}

func TestOrderNumbersAreUnique(t *testing.T) {
	v := setup(t)
	p := v.product(t, "Croissant", "2.50", 100)

	seen := make(map[string]bool)
	for i := 0; i < 60; i++ {
		o, err := v.engine.CreateOrder(context.Background(), v.request("2.50", Item{ProductID: p.ID, Quantity: 1}))
		require.NoError(t, err)
		assert.False(t, seen[o.OrderNumber], "duplicate %s", o.OrderNumber)
		seen[o.OrderNumber] = true
	}
}

func TestNumberFormat(t *testing.T) {
	g, err := newNumberGenerator()
	require.NoError(t, err)

	done := make(chan string, 1)
	go func() { done <- g.Next(time.UnixMilli(1_700_000_000_000)) }()

	var number string
	select {
	case number = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("order number generator did not return")
	}

	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ZS", parts[0])
	assert.Equal(t, "LOYW3V28", parts[1])
	assert.Len(t, parts[2], suffixLength)
	assert.Len(t, parts[2], 6)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestNewEngineRejectsBadRates(t *testing.T) {
	_, err := NewEngine(memory.New(), commission.Rates{
		Merchant: decimal.RequireFromString("0.5"),
		Operator: decimal.RequireFromString("0.2"),
		Hotel:    decimal.RequireFromString("0.05"),
	})
	assert.Error(t, err)
}

func TestWorkflow(t *testing.T) {
	v := setup(t)
	wf := v.engine.Workflow()

	require.Len(t, wf.States, 7)
	assert.Equal(t, model.StatusPending, wf.States[0].Status)
	assert.Equal(t, []model.OrderStatus{model.StatusConfirmed, model.StatusCancelled}, wf.States[0].Next)
	assert.True(t, wf.States[5].Terminal)
	assert.Empty(t, wf.States[6].Next)
	assert.Equal(t, map[string]int64{"merchant": 75, "operator": 20, "hotel": 5}, wf.Commission)

	for _, s := range wf.States {
		assert.NotEmpty(t, s.Message, s.Status)
	}
}

func TestReason(t *testing.T) {
	assert.Equal(t, "validation", Reason(&ValidationError{Field: "items"}))
	assert.Equal(t, "not_found", Reason(&NotFoundError{Entity: "order", ID: 1}))
	assert.Equal(t, "insufficient_stock", Reason(&InsufficientStockError{}))
	assert.Equal(t, "invalid_transition", Reason(&InvalidTransitionError{}))
	assert.Equal(t, "backend", Reason(&store.BackendError{Op: "x", Err: errors.New("down")}))
}
