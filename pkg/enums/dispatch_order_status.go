package enums

import "fmt"

// DispatchOrderStatus tracks where a dispatch order sits in the approval flow.
type DispatchOrderStatus string

const (
	DispatchOrderStatusPending         DispatchOrderStatus = "pending"
	DispatchOrderStatusPendingApproval DispatchOrderStatus = "pending_approval"
	DispatchOrderStatusConfirmed       DispatchOrderStatus = "confirmed"
	DispatchOrderStatusCancelled       DispatchOrderStatus = "cancelled"
)

var validDispatchOrderStatuses = []DispatchOrderStatus{
	DispatchOrderStatusPending,
	DispatchOrderStatusPendingApproval,
	DispatchOrderStatusConfirmed,
	DispatchOrderStatusCancelled,
}

func (s DispatchOrderStatus) String() string {
	return string(s)
}

func (s DispatchOrderStatus) IsValid() bool {
	for _, candidate := range validDispatchOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsEditable reports whether draft edits are still accepted.
func (s DispatchOrderStatus) IsEditable() bool {
	return s == DispatchOrderStatusPending || s == DispatchOrderStatusPendingApproval
}

func ParseDispatchOrderStatus(value string) (DispatchOrderStatus, error) {
	for _, candidate := range validDispatchOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispatch order status %q", value)
}
