package models

import (
	"net/mail"
	"time"
)

// ReminderType classifies a reminder relative to the payment due date.
type ReminderType string

// Reminder types.
const (
	ReminderUpcoming ReminderType = "upcoming"
	ReminderDue      ReminderType = "due"
	ReminderOverdue  ReminderType = "overdue"
)

// ReminderStatus is the delivery state of a dispatched reminder.
type ReminderStatus string

// Reminder statuses. "sent" is set on dispatch; "delivered", "opened" and
// "bounced" arrive later via provider webhook events.
const (
	StatusSent      ReminderStatus = "sent"
	StatusDelivered ReminderStatus = "delivered"
	StatusOpened    ReminderStatus = "opened"
	StatusBounced   ReminderStatus = "bounced"
	StatusFailed    ReminderStatus = "failed"
)

// ValidReminderStatus reports whether s is a known delivery status.
func ValidReminderStatus(s ReminderStatus) bool {
	switch s {
	case StatusSent, StatusDelivered, StatusOpened, StatusBounced, StatusFailed:
		return true
	}

	return false
}

// ReminderSettings is the per-property reminder policy. A single default
// record (no property ID) backs properties without their own settings.
type ReminderSettings struct {
	PropertyID             string `json:"property_id,omitempty"`
	Enabled                bool   `json:"enabled"`
	DaysBeforeDue          []int  `json:"days_before_due"`
	DaysAfterDue           []int  `json:"days_after_due"`
	SendOnWeekends         bool   `json:"send_on_weekends"`
	SendOnHolidays         bool   `json:"send_on_holidays"`
	MaxRemindersPerPayment int    `json:"max_reminders_per_payment"`
	CustomMessage          string `json:"custom_message,omitempty"`
	ContactEmail           string `json:"contact_email,omitempty"`
}

// Bounds for MaxRemindersPerPayment.
const (
	MinRemindersPerPayment = 1
	MaxRemindersCap        = 10
)

// Validate checks day offsets and the reminder cap.
func (s ReminderSettings) Validate() error {
	for _, d := range s.DaysBeforeDue {
		if d < 0 {
			return ErrNegativeDayOffset
		}
	}
	for _, d := range s.DaysAfterDue {
		if d < 0 {
			return ErrNegativeDayOffset
		}
	}

	if s.MaxRemindersPerPayment < MinRemindersPerPayment || s.MaxRemindersPerPayment > MaxRemindersCap {
		return ErrOutOfRange("max_reminders_per_payment", MinRemindersPerPayment, MaxRemindersCap)
	}

	if s.ContactEmail != "" {
		if _, err := mail.ParseAddress(s.ContactEmail); err != nil {
			return ErrInvalidEmail
		}
	}

	return nil
}

// DefaultReminderSettings is the built-in policy returned when nothing has
// been persisted yet.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		Enabled:                true,
		DaysBeforeDue:          []int{7, 3, 1},
		DaysAfterDue:           []int{1, 3, 7},
		SendOnWeekends:         false,
		SendOnHolidays:         false,
		MaxRemindersPerPayment: 5,
	}
}

// ReminderSettingsPatch carries partial updates; nil fields are left untouched.
type ReminderSettingsPatch struct {
	Enabled                *bool   `json:"enabled,omitempty"`
	DaysBeforeDue          *[]int  `json:"days_before_due,omitempty"`
	DaysAfterDue           *[]int  `json:"days_after_due,omitempty"`
	SendOnWeekends         *bool   `json:"send_on_weekends,omitempty"`
	SendOnHolidays         *bool   `json:"send_on_holidays,omitempty"`
	MaxRemindersPerPayment *int    `json:"max_reminders_per_payment,omitempty"`
	CustomMessage          *string `json:"custom_message,omitempty"`
	ContactEmail           *string `json:"contact_email,omitempty"`
}

// Apply merges the patch into s and returns the result.
func (p ReminderSettingsPatch) Apply(s ReminderSettings) ReminderSettings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.DaysBeforeDue != nil {
		s.DaysBeforeDue = *p.DaysBeforeDue
	}
	if p.DaysAfterDue != nil {
		s.DaysAfterDue = *p.DaysAfterDue
	}
	if p.SendOnWeekends != nil {
		s.SendOnWeekends = *p.SendOnWeekends
	}
	if p.SendOnHolidays != nil {
		s.SendOnHolidays = *p.SendOnHolidays
	}
	if p.MaxRemindersPerPayment != nil {
		s.MaxRemindersPerPayment = *p.MaxRemindersPerPayment
	}
	if p.CustomMessage != nil {
		s.CustomMessage = *p.CustomMessage
	}
	if p.ContactEmail != nil {
		s.ContactEmail = *p.ContactEmail
	}

	return s
}

// ReminderLogEntry records one dispatch attempt for a payment reminder.
// Status is updated by provider webhook events; entries are otherwise
// immutable and removed only by retention cleanup.
type ReminderLogEntry struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	PaymentID    string         `json:"payment_id"`
	PropertyID   string         `json:"property_id,omitempty"`
	ReminderType ReminderType   `json:"reminder_type"`
	Status       ReminderStatus `json:"status"`
	SentAt       time.Time      `json:"sent_at"`
	Channel      string         `json:"channel"`
	Error        string         `json:"error,omitempty"`
}
