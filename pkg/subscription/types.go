package subscription

// Ref is the opaque identifier of a created subscription.
type Ref string

// Status is the processor-side state of a subscription.
// Only StatusActive is treated as a confirmation signal.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPending   Status = "PENDING"
	StatusInactive  Status = "INACTIVE"
	StatusOverdue   Status = "OVERDUE"
	StatusCancelled Status = "CANCELLED"
)

// BillingType identifies the payment method sent to the processor.
type BillingType string

const BillingTypeCreditCard BillingType = "CREDIT_CARD"
