package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/dbpool"
	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// PaymentStore reads payment and tenant records from PostgreSQL. The
// reminder subsystem only consumes these records; the wider application owns
// their lifecycle.
type PaymentStore struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

// NewPaymentStore creates a PaymentStore.
func NewPaymentStore(pool *dbpool.Pool, log *logrus.Logger) *PaymentStore {
	return &PaymentStore{pool: pool, log: log}
}

// ListOutstanding returns unpaid payments joined with tenant contact details,
// ordered by due date.
func (s *PaymentStore) ListOutstanding(ctx context.Context) ([]models.OutstandingPayment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.tenant_id, p.property_id, p.amount, p.currency,
		       p.due_date, p.status, t.name, t.email
		FROM payments p
		JOIN tenants t ON t.id = p.tenant_id
		WHERE p.status IN ('pending', 'overdue')
		ORDER BY p.due_date`)
	if err != nil {
		return nil, fmt.Errorf("querying outstanding payments: %w", err)
	}
	defer rows.Close()

	var out []models.OutstandingPayment
	for rows.Next() {
		var p models.OutstandingPayment
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.PropertyID, &p.Amount, &p.Currency,
			&p.DueDate, &p.Status, &p.TenantName, &p.TenantEmail,
		); err != nil {
			return nil, fmt.Errorf("scanning outstanding payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outstanding payments: %w", err)
	}

	return out, nil
}
