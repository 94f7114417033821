package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// RenderReminder builds the subject and HTML body for a payment reminder.
// customMessage, when set, is appended verbatim (escaped) after the standard
// text.
func RenderReminder(rtype models.ReminderType, payment models.OutstandingPayment, customMessage string) (subject, body string) {
	amount := formatAmount(payment.Amount, payment.Currency)
	dueDate := payment.DueDate.Format("2 January 2006")

	var intro string
	switch rtype {
	case models.ReminderUpcoming:
		subject = fmt.Sprintf("Upcoming rent payment of %s due %s", amount, dueDate)
		intro = fmt.Sprintf("your rent payment of <strong>%s</strong> is due on %s.", amount, dueDate)
	case models.ReminderDue:
		subject = fmt.Sprintf("Rent payment of %s due today", amount)
		intro = fmt.Sprintf("your rent payment of <strong>%s</strong> is due today.", amount)
	case models.ReminderOverdue:
		subject = fmt.Sprintf("Overdue rent payment of %s", amount)
		intro = fmt.Sprintf("your rent payment of <strong>%s</strong> was due on %s and is now overdue.", amount, dueDate)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(payment.TenantName))
	fmt.Fprintf(&b, "<p>This is a reminder that %s</p>", intro)
	if customMessage != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(customMessage))
	}
	b.WriteString("<p>Thank you!</p>")

	return subject, b.String()
}

// formatAmount renders minor currency units as a human amount.
func formatAmount(minor int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}

	return fmt.Sprintf("%s %d.%02d", currency, minor/100, minor%100)
}
