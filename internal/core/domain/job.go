package domain

import "time"

// Job is a unit of billable work under a contract. Price is fixed at creation;
// the paid flag flips to true exactly once and never reverts. Once paid, price
// and PaymentDate are immutable.
type Job struct {
	ID          string     `json:"id" bson:"_id"`
	ContractID  string     `json:"contract_id" bson:"contract_id"`
	Description string     `json:"description" bson:"description"`
	Price       float64    `json:"price" bson:"price"`
	Paid        bool       `json:"paid" bson:"paid"`
	PaymentDate *time.Time `json:"payment_date,omitempty" bson:"payment_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}
