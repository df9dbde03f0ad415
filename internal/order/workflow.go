package order

import (
	"slices"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
)

var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:    {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed:  {model.StatusPreparing, model.StatusCancelled},
	model.StatusPreparing:  {model.StatusReady, model.StatusCancelled},
	model.StatusReady:      {model.StatusDelivering, model.StatusCancelled},
	model.StatusDelivering: {model.StatusDelivered, model.StatusCancelled},
	model.StatusDelivered:  {},
	model.StatusCancelled:  {},
}

var messages = map[model.OrderStatus]string{
	model.StatusPending:    "Your order has been received and is awaiting confirmation",
	model.StatusConfirmed:  "Your order has been confirmed by the merchant",
	model.StatusPreparing:  "Your order is being prepared",
	model.StatusReady:      "Your order is ready for delivery",
	model.StatusDelivering: "Your order is on its way to the hotel",
	model.StatusDelivered:  "Your order has been delivered to the hotel reception",
	model.StatusCancelled:  "Your order has been cancelled",
}

// NextStatuses returns the statuses reachable from s.
func NextStatuses(s model.OrderStatus) []model.OrderStatus {
	return slices.Clone(transitions[s])
}

// CanTransition reports whether the workflow allows from -> to.
func CanTransition(from, to model.OrderStatus) bool {
	return slices.Contains(transitions[from], to)
}

// Message returns the guest-facing text announcing status s.
func Message(s model.OrderStatus) string {
	return messages[s]
}

// State describes one workflow status for display.
type State struct {
	Status   model.OrderStatus   `json:"status"`
	Next     []model.OrderStatus `json:"next"`
	Terminal bool                `json:"terminal"`
	Message  string              `json:"message"`
}

// Workflow is the read-only description of the order lifecycle.
type Workflow struct {
	States     []State          `json:"states"`
	Commission map[string]int64 `json:"commission"`
}

// Workflow describes the states, their successors and the commission split.
func (e *Engine) Workflow() Workflow {
	states := make([]State, 0, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		states = append(states, State{
			Status:   s,
			Next:     NextStatuses(s),
			Terminal: s.Terminal(),
			Message:  Message(s),
		})
	}
	return Workflow{States: states, Commission: e.rates.Percentages()}
}
