package types

// PaymentStatus is the payment provider's lifecycle state for a payment.
type PaymentStatus string

const (
	PaymentCreated    PaymentStatus = "created"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// PaymentNotes is the free-form notes map attached to a payment at checkout.
// The app writes the originating device identifier here; it is the only join
// key between provider payments and local devices.
type PaymentNotes struct {
	DeviceID string `json:"device_id,omitempty"`
	App      string `json:"app,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Payment is a payment entity as returned by the provider API. Amounts are
// integer minor units (paise); timestamps are Unix epoch seconds. Payments
// are never persisted locally.
type Payment struct {
	ID               string        `json:"id"`
	Entity           string        `json:"entity"`
	Amount           int64         `json:"amount"`
	Currency         string        `json:"currency"`
	Status           PaymentStatus `json:"status"`
	Method           string        `json:"method"`
	Description      string        `json:"description"`
	Email            string        `json:"email"`
	Contact          string        `json:"contact"`
	Notes            PaymentNotes  `json:"notes"`
	OrderID          string        `json:"order_id"`
	InvoiceID        *string       `json:"invoice_id"`
	ErrorCode        *string       `json:"error_code"`
	ErrorDescription *string       `json:"error_description"`
	CreatedAt        int64         `json:"created_at"`
	Captured         bool          `json:"captured"`
	VPA              *string       `json:"vpa"`
	Bank             *string       `json:"bank"`
	Wallet           *string       `json:"wallet"`
}

// SubscriptionStatus is the provider's lifecycle state for a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionHalted    SubscriptionStatus = "halted"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCompleted SubscriptionStatus = "completed"
)

// SubscriptionNotes carries the linked device identifier, mirroring
// PaymentNotes.
type SubscriptionNotes struct {
	DeviceID string `json:"device_id,omitempty"`
}

// Subscription is a subscription entity as returned by the provider API.
type Subscription struct {
	ID           string             `json:"id"`
	Entity       string             `json:"entity"`
	PlanID       string             `json:"plan_id"`
	Status       SubscriptionStatus `json:"status"`
	Notes        SubscriptionNotes  `json:"notes"`
	CurrentStart *int64             `json:"current_start"`
	CurrentEnd   *int64             `json:"current_end"`
	ChargeAt     *int64             `json:"charge_at"`
	TotalCount   int                `json:"total_count"`
	PaidCount    int                `json:"paid_count"`
	CreatedAt    int64              `json:"created_at"`
}

// DeviceSubscription is the reconciled "latest subscription per device" view:
// for each linked device, the status and creation time of the most recently
// created subscription object.
type DeviceSubscription struct {
	Status    SubscriptionStatus `json:"status"`
	CreatedAt int64              `json:"created_at"`
}
