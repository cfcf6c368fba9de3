package domain

import "time"

// ContractStatus represents the lifecycle state of a contract.
type ContractStatus string

const (
	ContractNew        ContractStatus = "new"
	ContractInProgress ContractStatus = "in_progress"
	ContractTerminated ContractStatus = "terminated"
)

// Contract links one client profile and one contractor profile. The billing
// core treats contracts as read-only: they only resolve which two balances a
// job payment touches.
type Contract struct {
	ID           string         `json:"id" bson:"_id"`
	ClientID     string         `json:"client_id" bson:"client_id"`
	ContractorID string         `json:"contractor_id" bson:"contractor_id"`
	Terms        string         `json:"terms" bson:"terms"`
	Status       ContractStatus `json:"status" bson:"status"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
}

// Involves reports whether the given profile is a party to the contract.
func (c *Contract) Involves(profileID string) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}
