// Package order places orders and drives them through the delivery workflow.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bahriwassim/zishop1-sub000/internal/commission"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/notify"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/bahriwassim/zishop1-sub000/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultNotifyTimeout bounds one notifier call.
	DefaultNotifyTimeout = 2 * time.Second

	maxNumberAttempts = 5
	maxStaleRetries   = 2
)

// Item is one requested line of a new order.
type Item struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateRequest is a guest's order as submitted.
type CreateRequest struct {
	HotelID       uint             `json:"hotel_id"`
	MerchantID    uint             `json:"merchant_id"`
	ClientID      *uint            `json:"client_id,omitempty"`
	CustomerName  string           `json:"customer_name"`
	CustomerRoom  string           `json:"customer_room"`
	Items         []Item           `json:"items"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	DeliveryNotes *string          `json:"delivery_notes,omitempty"`
}

// StatusUpdate requests a workflow transition.
type StatusUpdate struct {
	Status            model.OrderStatus `json:"status"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery_time,omitempty"`
	DeliveryNotes     *string           `json:"delivery_notes,omitempty"`
}

// Engine validates, prices and persists orders and enforces the workflow.
type Engine struct {
	store         store.Store
	rates         commission.Rates
	notifier      notify.Notifier
	notifyTimeout time.Duration
	log           *zap.Logger
	numbers       *numberGenerator
	now           func() time.Time
	locks         keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the event sink. The default discards events.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithNotifyTimeout bounds each notifier call.
func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.notifyTimeout = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine over s. rates must sum to 1.
func NewEngine(s store.Store, rates commission.Rates, opts ...Option) (*Engine, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	numbers, err := newNumberGenerator()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:         s,
		rates:         rates,
		notifier:      notify.Nop{},
		notifyTimeout: DefaultNotifyTimeout,
		log:           zap.NewNop(),
		numbers:       numbers,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CreateOrder validates req, reserves stock and persists a pending order.
// Stock decrement and insert happen as one unit in the store.
func (e *Engine) CreateOrder(ctx context.Context, req CreateRequest) (*model.Order, error) {
	o, err := e.createOrder(ctx, req)
	if err != nil {
		prometheus.RecordOrderRejected(Reason(err))
		return nil, err
	}
	prometheus.RecordOrderCreated()

	e.log.Info("Order created",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Uint("hotel_id", o.HotelID),
		zap.Uint("merchant_id", o.MerchantID),
		zap.String("total_amount", o.TotalAmount.StringFixed(2)),
	)

	e.emit(ctx, notify.EventNewOrder, o.ID, func(ctx context.Context) error {
		return e.notifier.NotifyNewOrder(ctx, o)
	})
	return o, nil
}

func (e *Engine) createOrder(ctx context.Context, req CreateRequest) (*model.Order, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	if err := resolve("hotel", req.HotelID, func() error {
		_, err := e.store.GetHotel(ctx, req.HotelID)
		return err
	}); err != nil {
		return nil, err
	}
	if err := resolve("merchant", req.MerchantID, func() error {
		_, err := e.store.GetMerchant(ctx, req.MerchantID)
		return err
	}); err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		if err := resolve("client", *req.ClientID, func() error {
			_, err := e.store.GetClient(ctx, *req.ClientID)
			return err
		}); err != nil {
			return nil, err
		}
	}

	items, lines, err := e.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	total := *req.TotalAmount
	split := e.rates.Calculate(total)
	draft := &model.Order{
		HotelID:            req.HotelID,
		MerchantID:         req.MerchantID,
		ClientID:           req.ClientID,
		CustomerName:       req.CustomerName,
		CustomerRoom:       req.CustomerRoom,
		Items:              items,
		TotalAmount:        total,
		Status:             model.StatusPending,
		MerchantCommission: split.Merchant,
		OperatorCommission: split.Operator,
		HotelCommission:    split.Hotel,
		DeliveryNotes:      req.DeliveryNotes,
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := e.freeNumber(ctx)
		if err != nil {
			return nil, err
		}
		draft.OrderNumber = number

		placed, err := e.store.PlaceOrder(ctx, draft, lines)
		switch {
		case err == nil:
			return placed, nil
		case errors.Is(err, store.ErrConflict):
			continue
		default:
			return nil, wrapStore("place order", err)
		}
	}
	return nil, fmt.Errorf("place order: no free order number after %d attempts", maxNumberAttempts)
}

func validateCreate(req CreateRequest) error {
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	for i, item := range req.Items {
		if item.ProductID == 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Reason: "must be a positive integer"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "must be a positive integer"}
		}
	}
	if req.HotelID == 0 {
		return &ValidationError{Field: "hotel_id", Reason: "is required"}
	}
	if req.MerchantID == 0 {
		return &ValidationError{Field: "merchant_id", Reason: "is required"}
	}
	if req.CustomerName == "" {
		return &ValidationError{Field: "customer_name", Reason: "is required"}
	}
	if req.TotalAmount == nil {
		return &ValidationError{Field: "total_amount", Reason: "is required"}
	}
	if req.TotalAmount.IsNegative() {
		return &ValidationError{Field: "total_amount", Reason: "must not be negative"}
	}
	if !req.TotalAmount.Equal(req.TotalAmount.Round(2)) {
		return &ValidationError{Field: "total_amount", Reason: "must have at most 2 decimal places"}
	}
	return nil
}

// resolve turns a store lookup miss into a NotFoundError.
func resolve(entity string, id uint, lookup func() error) error {
	err := lookup()
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return wrapStore("get "+entity, err)
	}
	return nil
}

// priceItems resolves every product, captures price and name, and checks
// the summed quantity of each product against its stock.
func (e *Engine) priceItems(ctx context.Context, reqItems []Item) ([]model.OrderItem, []store.StockLine, error) {
	products := make(map[uint]*model.Product, len(reqItems))
	items := make([]model.OrderItem, 0, len(reqItems))
	lines := make([]store.StockLine, 0, len(reqItems))

	for _, it := range reqItems {
		p, ok := products[it.ProductID]
		if !ok {
			var err error
			p, err = e.store.GetProduct(ctx, it.ProductID)
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil, &NotFoundError{Entity: "product", ID: it.ProductID}
			}
			if err != nil {
				return nil, nil, wrapStore("get product", err)
			}
			products[it.ProductID] = p
		}
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Name:      p.Name,
		})
		lines = append(lines, store.StockLine{ProductID: p.ID, Quantity: it.Quantity})
	}

	for _, line := range store.MergeLines(lines) {
		p := products[line.ProductID]
		if p.Stock < line.Quantity {
			return nil, nil, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   line.Quantity,
			}
		}
	}
	return items, lines, nil
}

// freeNumber returns an order number not yet used by any stored order.
func (e *Engine) freeNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := e.numbers.Next(e.now())
		_, err := e.store.GetOrderByNumber(ctx, number)
		if errors.Is(err, store.ErrNotFound) {
			return number, nil
		}
		if err != nil {
			return "", wrapStore("check order number", err)
		}
	}
	return "", fmt.Errorf("no free order number after %d attempts", maxNumberAttempts)
}

// UpdateStatus moves the order to upd.Status when the workflow allows it.
func (e *Engine) UpdateStatus(ctx context.Context, id uint, upd StatusUpdate) (*model.Order, error) {
	o, from, err := e.updateStatus(ctx, id, upd)
	if err != nil {
		prometheus.RecordOrderRejected(Reason(err))
		return nil, err
	}
	prometheus.RecordTransition(string(from), string(o.Status))

	e.log.Info("Order status changed",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
	)

	change := notify.StatusChange{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		HotelID:     o.HotelID,
		MerchantID:  o.MerchantID,
		ClientID:    o.ClientID,
		NewStatus:   o.Status,
		Message:     Message(o.Status),
	}
	e.emit(ctx, notify.EventStatusChanged, o.ID, func(ctx context.Context) error {
		return e.notifier.NotifyStatusChange(ctx, change)
	})
	return o, nil
}

func (e *Engine) updateStatus(ctx context.Context, id uint, upd StatusUpdate) (*model.Order, model.OrderStatus, error) {
	if !upd.Status.Valid() {
		return nil, "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", upd.Status)}
	}

	unlock := e.locks.Lock(id)
	defer unlock()

	for attempt := 0; ; attempt++ {
		current, err := e.getOrder(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if !CanTransition(current.Status, upd.Status) {
			return nil, "", &InvalidTransitionError{From: current.Status, To: upd.Status}
		}

		to := upd.Status
		patch := model.OrderPatch{
			Status:            &to,
			EstimatedDelivery: upd.EstimatedDelivery,
			DeliveryNotes:     upd.DeliveryNotes,
		}
		now := e.now()
		if to == model.StatusConfirmed && current.ConfirmedAt == nil {
			patch.ConfirmedAt = &now
		}
		if to == model.StatusDelivered && current.DeliveredAt == nil {
			patch.DeliveredAt = &now
		}

		updated, err := e.store.TransitionOrder(ctx, id, current.Status, patch)
		if errors.Is(err, store.ErrStaleStatus) && attempt < maxStaleRetries {
			continue
		}
		if err != nil {
			return nil, "", wrapOrderErr("transition order", id, err)
		}
		return updated, current.Status, nil
	}
}

// MarkPickedUp records that the guest collected a delivered order.
// Repeating it keeps the first pickup time.
func (e *Engine) MarkPickedUp(ctx context.Context, id uint) (*model.Order, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	current, err := e.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != model.StatusDelivered {
		return nil, fmt.Errorf("%w: order %s is %s", ErrNotDelivered, current.OrderNumber, current.Status)
	}
	if current.PickedUp {
		return current, nil
	}

	picked := true
	now := e.now()
	updated, err := e.store.TransitionOrder(ctx, id, model.StatusDelivered, model.OrderPatch{
		PickedUp:   &picked,
		PickedUpAt: &now,
	})
	if err != nil {
		return nil, wrapOrderErr("mark picked up", id, err)
	}

	e.log.Info("Order picked up", zap.Uint("order_id", id), zap.String("order_number", updated.OrderNumber))
	return updated, nil
}

// GetOrder returns an order by id.
func (e *Engine) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	return e.getOrder(ctx, id)
}

// GetOrderByNumber returns an order by its public number.
func (e *Engine) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	o, err := e.store.GetOrderByNumber(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("order %s: %w", number, store.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get order by number", err)
	}
	return o, nil
}

func (e *Engine) getOrder(ctx context.Context, id uint) (*model.Order, error) {
	o, err := e.store.GetOrder(ctx, id)
	if err != nil {
		return nil, wrapOrderErr("get order", id, err)
	}
	return o, nil
}

// emit calls the notifier under its own timeout. Failures and panics are
// logged and counted, never returned.
func (e *Engine) emit(ctx context.Context, event string, orderID uint, call func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.notifyTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			prometheus.RecordNotificationError(event)
			e.log.Error("Order notifier panicked",
				zap.String("event", event),
				zap.Uint("order_id", orderID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	if err := call(ctx); err != nil {
		prometheus.RecordNotificationError(event)
		e.log.Warn("Failed to emit order notification",
			zap.String("event", event),
			zap.Uint("order_id", orderID),
			zap.Error(err),
		)
	}
}

func wrapOrderErr(op string, id uint, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "order", ID: id}
	}
	return wrapStore(op, err)
}

func wrapStore(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
