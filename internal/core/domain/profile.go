package domain

import "time"

// Role distinguishes the two kinds of participants: clients commission jobs,
// contractors perform them. A profile's role is fixed at creation.
const (
	RoleClient     = "client"
	RoleContractor = "contractor"
)

// DepositLimitRatio caps a single deposit at this fraction of the client's
// outstanding unpaid job total.
const DepositLimitRatio = 0.25

// Profile is a participant account with a role and a monetary balance.
// Balance is mutated only inside a store transaction and is never negative.
type Profile struct {
	ID         string    `json:"id" bson:"_id"`
	FirstName  string    `json:"first_name" bson:"first_name"`
	LastName   string    `json:"last_name" bson:"last_name"`
	Profession string    `json:"profession,omitempty" bson:"profession,omitempty"`
	Role       string    `json:"role" bson:"role"`
	Balance    float64   `json:"balance" bson:"balance"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// FullName returns the profile's display name.
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
