package models

import "time"

// Account is the credential record behind a user id.
type Account struct {
	UserID       string    `bson:"userId" json:"userId"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
