package models

import "time"

// PaymentStatus is the lifecycle state of a rent payment.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is a rent payment owed by a tenant for a property.
type Payment struct {
	ID         string        `json:"id"`
	TenantID   string        `json:"tenant_id"`
	PropertyID string        `json:"property_id"`
	Amount     int64         `json:"amount"` // minor currency units
	Currency   string        `json:"currency"`
	DueDate    time.Time     `json:"due_date"`
	Status     PaymentStatus `json:"status"`
}

// Tenant is a coliving resident with contact details for notifications.
type Tenant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Property is a coliving property.
type Property struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OutstandingPayment joins a payment with the tenant contact needed to
// dispatch a reminder.
type OutstandingPayment struct {
	Payment
	TenantName  string `json:"tenant_name"`
	TenantEmail string `json:"tenant_email"`
}
