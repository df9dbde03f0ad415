package notify

import (
	"context"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"go.uber.org/zap"
)

// LogNotifier writes one structured log line per event.
type LogNotifier struct {
	log *zap.Logger
}

// NewLog returns a LogNotifier. A nil logger falls back to the one carried
// by each call's context.
func NewLog(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) logger(ctx context.Context) *zap.Logger {
	if n.log != nil {
		return n.log
	}
	return logger.FromContext(ctx)
}

func (n *LogNotifier) NotifyNewOrder(ctx context.Context, order *model.Order) error {
	fields := []zap.Field{
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("hotel_id", order.HotelID),
		zap.Uint("merchant_id", order.MerchantID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	}
	if order.ClientID != nil {
		fields = append(fields, zap.Uint("client_id", *order.ClientID))
	}
	n.logger(ctx).Info("New order", fields...)
	return nil
}

func (n *LogNotifier) NotifyStatusChange(ctx context.Context, change StatusChange) error {
	fields := []zap.Field{
		zap.Uint("order_id", change.OrderID),
		zap.String("order_number", change.OrderNumber),
		zap.Uint("hotel_id", change.HotelID),
		zap.Uint("merchant_id", change.MerchantID),
		zap.String("status", string(change.NewStatus)),
		zap.String("message", change.Message),
	}
	if change.ClientID != nil {
		fields = append(fields, zap.Uint("client_id", *change.ClientID))
	}
	n.logger(ctx).Info("Order status changed", fields...)
	return nil
}
