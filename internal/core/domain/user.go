package domain

import "time"

// User models an authenticated actor. Credentials are owned by the identity
// layer; the billing core only ever sees the resolved profile the user maps to.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	ProfileID    string    `json:"profile_id" bson:"profile_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
