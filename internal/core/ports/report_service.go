package ports

import (
	"context"
	"time"
)

// ProfessionEarnings is one aggregation group of the profession report.
type ProfessionEarnings struct {
	Profession    string  `json:"profession"`
	TotalEarnings float64 `json:"total_earnings"`
}

// ClientPayments is one aggregation group of the clients report.
type ClientPayments struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	TotalPaid float64 `json:"total_paid"`
}

// BestProfessionInput bounds the profession report to a date window.
// End is inclusive through its final instant.
type BestProfessionInput struct {
	Start time.Time
	End   time.Time
}

// BestClientsInput bounds the clients report. Limit defaults to 2 when zero.
type BestClientsInput struct {
	Start time.Time
	End   time.Time
	Limit int
}

// ReportService answers the read-only earnings aggregations. It performs no
// writes and reads against a stable snapshot: a payment transfer is either
// fully visible or not at all.
type ReportService interface {
	BestProfession(ctx context.Context, input BestProfessionInput) (*ProfessionEarnings, error)
	BestClients(ctx context.Context, input BestClientsInput) ([]ClientPayments, error)
}

// ReportRepository runs the grouped sums over paid jobs. Both queries return
// groups ordered by descending total.
type ReportRepository interface {
	// ProfessionEarnings groups paid jobs in [from, to] by contractor
	// profession.
	ProfessionEarnings(ctx context.Context, from, to time.Time) ([]ProfessionEarnings, error)
	// TopClients groups paid jobs in [from, to] by paying client, capped at
	// limit groups.
	TopClients(ctx context.Context, from, to time.Time, limit int) ([]ClientPayments, error)
}
