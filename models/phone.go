package models

import (
	"time"
)

// Phone is keyed by the number itself; one number maps to at most one
// contact (via contact_phones) and at most one caseworker (users.phone).
type Phone struct {
	Phone     string    `json:"phone" db:"phone"`
	Comment   *string   `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (Phone) TableName() string {
	return "phones"
}

func (Phone) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS phones (
		phone TEXT PRIMARY KEY,
		comment TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	`
}
