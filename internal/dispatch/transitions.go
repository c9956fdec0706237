package dispatch

import (
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
)

var allowedTransitions = map[enums.DispatchOrderStatus][]enums.DispatchOrderStatus{
	enums.DispatchOrderStatusPending: {
		enums.DispatchOrderStatusPendingApproval,
		enums.DispatchOrderStatusConfirmed,
		enums.DispatchOrderStatusCancelled,
	},
	enums.DispatchOrderStatusPendingApproval: {
		enums.DispatchOrderStatusPending,
		enums.DispatchOrderStatusConfirmed,
		enums.DispatchOrderStatusCancelled,
	},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to enums.DispatchOrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func checkTransition(order *models.DispatchOrder, to enums.DispatchOrderStatus) error {
	if CanTransition(order.Status, to) {
		return nil
	}
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move dispatch order from %s to %s", order.Status, to).
		WithDetails(map[string]any{
			"orderId": order.ID,
			"from":    order.Status,
			"to":      to,
		})
}

func checkEditable(order *models.DispatchOrder) error {
	if order.Status.IsEditable() {
		return nil
	}
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "dispatch order is %s and can no longer be edited", order.Status).
		WithDetails(map[string]any{"orderId": order.ID, "status": order.Status})
}

func requireAdmin(actor Actor, action string) error {
	if actor.Role == enums.RoleAdmin {
		return nil
	}
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "%s requires the admin role", action)
}

func requireOperator(actor Actor) error {
	if actor.Role.IsValid() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
}
