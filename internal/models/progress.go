package models

import "time"

// UserProgress is one weight/measurement entry. Entries are append-only.
type UserProgress struct {
	ID           string             `bson:"-" json:"id"`
	UserID       string             `bson:"userId" json:"userId"`
	Date         time.Time          `bson:"date" json:"date"`
	Weight       float64            `bson:"weight" json:"weight"`
	Notes        string             `bson:"notes" json:"notes"`
	Measurements map[string]float64 `bson:"measurements" json:"measurements"`
}
