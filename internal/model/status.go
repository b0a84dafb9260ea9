package model

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// statusFlow is the fulfilment sequence; cancelled sits outside it.
var statusFlow = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered,
}

func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled,
	}
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func statusIndex(s OrderStatus) int {
	for i, v := range statusFlow {
		if s == v {
			return i
		}
	}
	return -1
}

// CancelPolicy decides how a move to cancelled relates to the fulfilment flow.
type CancelPolicy int

const (
	// CancelFromAnyActive permits cancellation from every non-terminal status.
	CancelFromAnyActive CancelPolicy = iota
	// CancelStrictFlow rejects cancellation outright: cancelled has no
	// position in the forward sequence, so a strictly monotonic reading
	// leaves no legal way to reach it.
	CancelStrictFlow
)

// CanTransition reports whether an order or order item may move from one
// status to another. Fulfilment statuses only ever move forward (skipping
// ahead is allowed, repeating the current status is a no-op update).
// Cancellation is governed by the policy, and terminal statuses admit no
// further movement.
func CanTransition(from, to OrderStatus, policy CancelPolicy) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		switch policy {
		case CancelFromAnyActive:
			return !from.Terminal()
		default:
			return false
		}
	}
	return statusIndex(to) >= statusIndex(from)
}
