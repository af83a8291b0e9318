package subscription

// Subscription is the caller's current subscription as reported by the backend.
type Subscription struct {
	ID     Ref
	PlanID string
	Status Status
}

// IsActive returns true if the processor has activated the subscription.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}
